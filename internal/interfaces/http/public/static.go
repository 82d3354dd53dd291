package public

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/sai-darshan-k/Vimal-Task/internal/interfaces/http/common"
)

const notFoundMessage = "Endpoint not found"

func (h *Handler) indexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index := filepath.Join(h.staticDir, "index.html")
		if info, err := os.Stat(index); err != nil || info.IsDir() {
			common.WriteError(h.logger, w, http.StatusNotFound, notFoundMessage)
			return
		}
		http.ServeFile(w, r, index)
	}
}

// staticHandler は STATIC_DIR 配下のファイルを /static/ で配信する。
func (h *Handler) staticHandler() http.HandlerFunc {
	files := http.StripPrefix("/static/", http.FileServer(http.Dir(h.staticDir)))
	return func(w http.ResponseWriter, r *http.Request) {
		files.ServeHTTP(w, r)
	}
}

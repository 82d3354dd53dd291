package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
	"github.com/sirupsen/logrus"
)

type fakeFailedWrites struct {
	items []domain.FailedWrite
	err   error
	limit int
}

func (f *fakeFailedWrites) Recent(_ context.Context, limit int) ([]domain.FailedWrite, error) {
	f.limit = limit
	return f.items, f.err
}

func newRouter(service *fakeFailedWrites) http.Handler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	router := chi.NewRouter()
	router.Route("/admin", NewHandler(Config{Logger: logger, FailedWrites: service}).Register)
	return router
}

func TestFailedWriteList(t *testing.T) {
	tests := []struct {
		query string
		limit int
	}{
		{"", 50},
		{"?limit=5", 5},
		{"?limit=-1", 50},
		{"?limit=abc", 50},
	}

	for _, test := range tests {
		service := &fakeFailedWrites{items: []domain.FailedWrite{{ID: "1", Date: "2024-01-01", Kind: "write_rejected"}}}
		rec := httptest.NewRecorder()
		newRouter(service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/failed_writes"+test.query, nil))

		if rec.Code != http.StatusOK {
			t.Errorf("%q: unexpected status %d", test.query, rec.Code)
			continue
		}
		if service.limit != test.limit {
			t.Errorf("%q: expected limit %d, got %d", test.query, test.limit, service.limit)
		}
		var body failedWriteListResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if len(body.Items) != 1 || body.Items[0].Kind != "write_rejected" {
			t.Errorf("%q: unexpected body %+v", test.query, body)
		}
	}
}

func TestFailedWriteListFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeFailedWrites{err: errors.New("mongo down")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/failed_writes", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("unexpected status %d", rec.Code)
	}
}

func TestFailedWriteListEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeFailedWrites{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/failed_writes", nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if items, ok := body["items"].([]any); !ok || len(items) != 0 {
		t.Errorf("expected an empty list, got %v", body["items"])
	}
}

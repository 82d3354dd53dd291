package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sai-darshan-k/Vimal-Task/internal/config"
	"github.com/sai-darshan-k/Vimal-Task/internal/farm/application"
	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
	adminhttp "github.com/sai-darshan-k/Vimal-Task/internal/interfaces/http/admin"
	commonhttp "github.com/sai-darshan-k/Vimal-Task/internal/interfaces/http/common"
	publichttp "github.com/sai-darshan-k/Vimal-Task/internal/interfaces/http/public"
	"github.com/sirupsen/logrus"
)

// Server は HTTP サーバーのライフサイクルを管理し、Public/Admin の各ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger             *logrus.Logger
	location           *time.Location
	submissionService  application.SubmissionService
	imageService       application.ImageService
	failedWriteService application.FailedWriteQueryService
	keepAlive          *KeepAlive
	closers            []func(context.Context) error
	jwtConfigs         []config.JWTConfig
	jwtAudience        string
	staticDir          string
	addr               string
	allowedOrigins     []string
}

// Dependencies はインフラ層で生成したアダプタ群。Journal と Images は未設定でもよい。
type Dependencies struct {
	Registry *domain.Registry
	Points   application.PointStore
	Images   application.ImageStore
	Shrinker application.ImageShrinker
	Journal  application.FailedWriteJournal
	Closers  []func(context.Context) error
}

type adminPrincipal = commonhttp.AdminPrincipal

// Run はHTTPサーバーを起動し、SIGTERM を受けるまでブロックする。
func (s *Server) Run() error {
	if err := s.keepAlive.Start(); err != nil {
		s.logger.WithError(err).Error("self-ping を開始できませんでした")
	}

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Infof("HTTP サーバー起動: http://%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

// Router はミドルウェアとルーティングを組み立てる。
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.logger, NoColor: true}))
	router.Use(commonhttp.Recoverer(s.logger))
	router.Use(withCORS(s.allowedOrigins))

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Endpoint not found"})
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	})

	router.Get("/healthz", s.healthHandler())
	router.Get("/ping", s.pingHandler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:      s.logger,
		Submissions: s.submissionService,
		Images:      s.imageService,
		StaticDir:   s.staticDir,
	})
	publicHandler.Register(router)

	if s.failedWriteService != nil && len(s.jwtConfigs) > 0 {
		adminHandler := adminhttp.NewHandler(adminhttp.Config{
			Logger:       s.logger,
			FailedWrites: s.failedWriteService,
		})
		router.Route("/admin", func(r chi.Router) {
			r.Use(s.authMiddleware)
			adminHandler.Register(r)
		})
	}

	return router
}

// normaliseBaseURL は入力文字列をトリムして末尾スラッシュを削除したURLを返す。
func normaliseBaseURL(input string) string {
	trimmed := strings.TrimSpace(input)
	return strings.TrimRight(trimmed, "/")
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler は監視系と self-ping からのヘルスチェックに応える。外部依存には触れない。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.logger.Debug("health check received")
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

// pingHandler はインスタンスが起きていることを示す keep-alive 用エンドポイント。
func (s *Server) pingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		now := time.Now().In(s.location)
		s.logger.WithField("at", now.Format(time.RFC3339)).Info("ping received")
		s.writeJSON(w, http.StatusOK, map[string]string{
			"status":    "alive",
			"timestamp": now.Format(time.RFC3339Nano),
			"message":   "Farm Tracker API is running",
		})
	}
}

// authMiddleware は Authorization ヘッダーから JWT を検証し、オペレーターをコンテキストへ詰める。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Missing Authorization header"})
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Bearer token required"})
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Empty access token"})
			return
		}

		claims, err := s.parseAuthToken(tokenString)
		if err != nil {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}

		admin := adminPrincipal{
			Subject: claims.Subject,
			Issuer:  claims.Issuer,
			Name:    claims.Name,
		}

		ctx := commonhttp.ContextWithAdmin(r.Context(), admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// parseAuthToken は JWT 設定を順番に試し、署名検証と Issuer/Audience の整合性を確認する。
func (s *Server) parseAuthToken(tokenString string) (*authClaims, error) {
	if len(s.jwtConfigs) == 0 {
		return nil, errors.New("admin authentication is not configured")
	}

	for _, cfg := range s.jwtConfigs {
		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
			}
			return cfg.Secret, nil
		}, jwt.WithLeeway(30*time.Second))

		if err != nil || !token.Valid {
			continue
		}

		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			continue
		}
		if claims.Subject == "" {
			continue
		}
		if s.jwtAudience != "" && !contains(claims.Audience, s.jwtAudience) {
			continue
		}

		return claims, nil
	}

	return nil, errors.New("invalid access token")
}

// contains は Audience 等の検証で利用する単純な包含チェック。
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

type authClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// writeJSON は JSON レスポンスの共通書き込み処理。
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	commonhttp.WriteJSON(s.logger, w, status, payload)
}

// shutdown は self-ping を止め、外部クライアントをタイムアウト付きで閉じる。
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s.keepAlive.Stop(shutdownCtx)
	for _, closeFn := range s.closers {
		if err := closeFn(shutdownCtx); err != nil {
			s.logger.WithError(err).Warn("クライアント切断時にエラー")
		}
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case sig := <-sigChan:
		srv.logger.Infof("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.WithError(err).Error("サーバー停止時にエラー")
		}
	}

	srv.shutdown(context.Background())
	return runErr
}

// New は Config とインフラのアダプタを受け取り、アプリケーションサービスとハンドラを組み立てた Server を返す。
func New(cfg config.Config, deps Dependencies) *Server {
	logger := cfg.ServerLog
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.FixedZone("IST", 5*60*60+30*60)
		logger.WithError(err).Warnf("タイムゾーン %s の読み込みに失敗, IST を使用します", cfg.Timezone)
	}

	srv := &Server{
		logger:         logger,
		location:       loc,
		closers:        deps.Closers,
		jwtConfigs:     append([]config.JWTConfig(nil), cfg.JWTConfigs...),
		jwtAudience:    cfg.JWTAudience,
		staticDir:      cfg.StaticDir,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
	}

	srv.submissionService = application.NewSubmissionService(application.SubmissionServiceConfig{
		Registry:        deps.Registry,
		Store:           deps.Points,
		Journal:         deps.Journal,
		Logger:          logger,
		Location:        loc,
		VerifyWindow:    cfg.VerifyWindow,
		RejectionWindow: cfg.RejectionWindow,
	})
	srv.imageService = application.NewImageService(application.ImageServiceConfig{
		Store:    deps.Images,
		Shrinker: deps.Shrinker,
		Folder:   cfg.Cloudinary.Folder,
		Logger:   logger,
	})
	if deps.Journal != nil {
		srv.failedWriteService = application.NewFailedWriteQueryService(deps.Journal)
	}
	srv.keepAlive = NewKeepAlive(KeepAliveConfig{
		Logger:   logger,
		BaseURL:  cfg.ExternalURL,
		Interval: cfg.SelfPingInterval,
		Timeout:  cfg.SelfPingTimeout,
	})

	return srv
}

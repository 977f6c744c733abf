package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	adminapp "github.com/sngm3741/pcb-intake-services/api/internal/admin/application"
	"github.com/sngm3741/pcb-intake-services/api/internal/auth"
	"github.com/sngm3741/pcb-intake-services/api/internal/config"
	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
	adminhttp "github.com/sngm3741/pcb-intake-services/api/internal/interfaces/http/admin"
	commonhttp "github.com/sngm3741/pcb-intake-services/api/internal/interfaces/http/common"
	publichttp "github.com/sngm3741/pcb-intake-services/api/internal/interfaces/http/public"
	publicapp "github.com/sngm3741/pcb-intake-services/api/internal/public/application"
)

// SubmissionStore は受付と管理の両方から使う応募ストアのポート。
type SubmissionStore interface {
	Create(ctx context.Context, sub *domain.Submission) error
	List(ctx context.Context) ([]domain.Submission, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Submission, error)
	Ping(ctx context.Context) error
}

// Dependencies はインフラ層で初期化済みのアダプタ群。
type Dependencies struct {
	Store      SubmissionStore
	CloseStore func(context.Context) error
	Objects    publicapp.ObjectStore
	Notifier   publicapp.Notifier
}

// Server は HTTP サーバーのライフサイクルを管理し、Public/Admin の各ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger         *zap.Logger
	addr           string
	allowedOrigins []string
	store          SubmissionStore
	closeStore     func(context.Context) error
	verifier       *auth.Verifier
	intake         *publicapp.IntakeService
	reviews        adminapp.ReviewService
	maxUploadBytes int64
}

// New は Config と初期化済みアダプタを受け取り、アプリケーションサービスを組み立てた Server を返す。
func New(cfg config.Config, deps Dependencies) *Server {
	logger := cfg.ServerLog
	if logger == nil {
		logger = zap.NewNop()
	}

	policy := domain.NewFilePolicy(cfg.AllowedContentTypes)
	relay := publicapp.NewRelay(publicapp.RelayConfig{
		Store:  deps.Objects,
		Policy: policy,
		Folder: cfg.S3Folder,
	})

	return &Server{
		logger:         logger,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		store:          deps.Store,
		closeStore:     deps.CloseStore,
		verifier: auth.NewVerifier(auth.Config{
			PasswordHash:  cfg.AdminPasswordHash,
			SigningSecret: cfg.JWTSecret,
			Issuer:        cfg.JWTIssuer,
			TTL:           cfg.AdminTokenTTL,
		}),
		intake: publicapp.NewIntakeService(publicapp.IntakeConfig{
			Relay:         relay,
			Repository:    deps.Store,
			Notifier:      deps.Notifier,
			Policy:        policy,
			Logger:        logger,
			NotifyTimeout: cfg.NotifyTimeout,
		}),
		reviews:        adminapp.NewReviewService(deps.Store),
		maxUploadBytes: cfg.MaxUploadBytes,
	}
}

// Handler は Public/Admin のルーティングやミドルウェアを組み立てる。
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:         s.logger,
		Intake:         s.intake,
		Authenticator:  s.verifier,
		MaxUploadBytes: s.maxUploadBytes,
	})
	adminHandler := adminhttp.NewHandler(adminhttp.Config{
		Logger:  s.logger,
		Reviews: s.reviews,
	})

	router.Route("/api", func(r chi.Router) {
		publicHandler.Register(r, s.authMiddleware)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			adminHandler.Register(r)
		})
	})
	return router
}

// Run はHTTPサーバーを起動し、シグナル受信まで待機する。
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP サーバー起動", zap.String("addr", s.addr))
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

// Wait は送信中の通知がすべて終わるまでブロックする。
func (s *Server) Wait() {
	s.intake.Wait()
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
// プリフライトには常に空ボディの 204 を返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := len(origins) == 0
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
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && originAllowed(origin, allowed):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
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
	_, ok := allowed[origin]
	return ok
}

// healthHandler は応募ストアへの疎通確認を行い、監視系からのヘルスチェック要求に応える。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.store.Ping(ctx); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
			})
			return
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// authMiddleware は Authorization ヘッダーから JWT を検証し、認証済みオペレーターをコンテキストへ詰める。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			commonhttp.WriteError(s.logger, w, http.StatusUnauthorized, "Missing Authorization header")
			return
		}

		const bearerPrefix = "Bearer "
		if len(authHeader) < len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			commonhttp.WriteError(s.logger, w, http.StatusUnauthorized, "Authorization header must use the Bearer scheme")
			return
		}

		tokenString := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if tokenString == "" {
			commonhttp.WriteError(s.logger, w, http.StatusUnauthorized, "Access token is empty")
			return
		}

		claims, err := s.verifier.Parse(tokenString)
		if err != nil {
			if errors.Is(err, domain.ErrServerMisconfigured) {
				s.logger.Error("token verification unavailable", zap.Error(err))
			}
			commonhttp.WriteError(s.logger, w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		principal := commonhttp.Principal{Subject: claims.Subject, Role: claims.Role}
		if claims.ExpiresAt != nil {
			principal.ExpiresAt = claims.ExpiresAt.Time.UTC()
		}
		ctx := commonhttp.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// shutdown は送信中の通知を待ち、ストアをタイムアウト付きで切断する。
func (s *Server) shutdown(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.intake.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		s.logger.Warn("通知の送信完了を待たずに停止します")
	}

	if s.closeStore == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.closeStore(shutdownCtx); err != nil {
		s.logger.Warn("ストア切断時にエラー", zap.Error(err))
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
			runErr = err
		}
	case sig := <-sigChan:
		srv.logger.Info("シグナルを受信。サーバー停止処理を開始します。", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Warn("サーバー停止時にエラー", zap.Error(err))
		}
	}

	srv.shutdown(context.Background())
	return runErr
}

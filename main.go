package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/devfolio/portfolio/backend/handlers"
	"github.com/devfolio/portfolio/backend/internal/admin"
	"github.com/devfolio/portfolio/backend/internal/config"
	"github.com/devfolio/portfolio/backend/internal/contact/repository"
	"github.com/devfolio/portfolio/backend/internal/contact/service"
	"github.com/devfolio/portfolio/backend/internal/database"
	"github.com/devfolio/portfolio/backend/internal/server"
	"github.com/devfolio/portfolio/backend/internal/sessions"
	"github.com/devfolio/portfolio/backend/internal/tokens"
	"github.com/devfolio/portfolio/backend/pkg/logger"
	"github.com/devfolio/portfolio/backend/pkg/metrics"
	"github.com/devfolio/portfolio/backend/pkg/middleware"
)

const (
	contactLimitMessage = "Muitas tentativas de contato. Tente novamente em 15 minutos."
	loginLimitMessage   = "Muitas tentativas de login. Tente novamente em 15 minutos."
)

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.JWT.Secret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			logger.Fatalf("generate JWT secret: %v", err)
		}
		cfg.JWT.Secret = hex.EncodeToString(b)
		logger.Warnf("JWT_SECRET not set; using a random secret, tokens will not survive a restart")
	}

	loc, err := time.LoadLocation(cfg.Export.TimeZone)
	if err != nil {
		logger.Warnf("unknown EXPORT_TIMEZONE %q, exporting in UTC: %v", cfg.Export.TimeZone, err)
		loc = time.UTC
	}

	repo, closeRepo, err := repository.Open(ctx, cfg, database.DefaultRetry)
	if err != nil {
		logger.Fatalf("contact store: %v", err)
	}
	ready := map[string]handlers.Pinger{"store": repo}

	rdb, revoker, windows := openRedis(ctx, cfg)
	if rdb != nil {
		ready["redis"] = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	creds, err := admin.NewCredentials(cfg.Admin)
	if err != nil {
		logger.Fatalf("admin credentials: %v", err)
	}
	if !creds.Configured() {
		logger.Warnf("ADMIN_EMAIL/ADMIN_PASSWORD not set; admin login is disabled")
	}
	auth := admin.NewService(creds, tokens.NewJWTService(cfg.JWT), revoker, cfg.Admin.Email)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	deps := server.Deps{
		Config:         cfg,
		Contacts:       service.New(repo, service.WithLocation(loc)),
		Auth:           auth,
		ContactLimiter: middleware.NewWindowLimiter("contact", cfg.RateLimit.ContactMax, cfg.RateLimit.Window, contactLimitMessage, windows),
		LoginLimiter:   middleware.NewWindowLimiter("login", cfg.RateLimit.LoginMax, cfg.RateLimit.Window, loginLimitMessage, windows),
		Ready:          ready,
		Metrics:        promhttp.Handler(),
	}
	if cfg.RateLimit.Enabled {
		deps.Throttle = middleware.NewThrottle(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	r, err := server.NewRouter(deps)
	if err != nil {
		logger.Fatalf("build router: %v", err)
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("server listening on %s (env=%s store=%s redis=%v)", srv.Addr, cfg.Server.Environment, cfg.Store.Driver, rdb != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Infof("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Errorf("server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}
	if err := closeRepo(shutdownCtx); err != nil {
		logger.Errorf("close contact store: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	logger.Infof("server stopped")
}

// openRedis connects the shared revocation and rate-limit stores. Redis is
// optional: when it is not configured or not reachable at startup the
// process-local stores are used and the returned client is nil.
func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, sessions.Revoker, middleware.WindowStore) {
	var windows middleware.WindowStore = middleware.NewMemoryWindowStore()
	var revoker sessions.Revoker = sessions.NewMemoryRevoker()
	addr := cfg.Redis.Addr()
	if addr == "" {
		return nil, revoker, windows
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := rdb.Ping(pctx).Err()
	cancel()
	if err != nil {
		logger.Warnf("failed to connect to Redis (%s), using in-memory revocations and rate limits: %v", addr, err)
		_ = rdb.Close()
		return nil, revoker, windows
	}
	logger.Infof("connected to Redis: %s", addr)
	revoker = sessions.NewRedisRevoker(rdb, "")
	if cfg.RateLimit.UseRedis {
		windows = middleware.NewRedisWindowStore(rdb, "")
	}
	return rdb, revoker, windows
}

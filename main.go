package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/katsunarinishio0430-cmd/biolog-app/config"
	"github.com/katsunarinishio0430-cmd/biolog-app/estimator"
	"github.com/katsunarinishio0430-cmd/biolog-app/store"
	"github.com/katsunarinishio0430-cmd/biolog-app/tracker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "biolog-app: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := config.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Options{
		Backend:    cfg.StoreBackend,
		DSN:        cfg.DBURL,
		SQLitePath: cfg.SQLitePath,
		CacheTTL:   cfg.CacheTTL,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	log.Infof("[store] %s backend ready (cache ttl %s)", cfg.StoreBackend, cfg.CacheTTL)

	svc := tracker.New(st, log)
	h := &Handler{
		svc:      svc,
		creds:    credentials{Username: cfg.Username, PasswordHash: cfg.PasswordHash},
		sessions: newSessionStore(),
		log:      log,
	}
	if h.creds.Username == "" || h.creds.PasswordHash == "" {
		log.Warnf("[login] BIOLOG_USERNAME or BIOLOG_PASSWORD_HASH not set; logins will fail")
	}
	attachEstimator(h, cfg, log)

	sched, err := startScheduler(cfg.SummaryRefreshCron, svc, log)
	if err != nil {
		return err
	}
	defer stopScheduler(sched, log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("[server] listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		log.Infof("[server] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

// attachEstimator wires the configured model provider into h. A missing
// provider is not fatal; the estimate endpoints answer 503.
func attachEstimator(h *Handler, cfg *config.Config, log *zap.SugaredLogger) {
	est, err := estimator.New(estimator.Config{
		Provider: cfg.EstimatorProvider,
		APIKey:   cfg.EstimatorAPIKey(),
		BaseURL:  cfg.EstimatorBaseURL(),
		Model:    cfg.EstimatorModel(),
		Timeout:  cfg.EstimatorTimeout,
	})
	switch {
	case errors.Is(err, estimator.ErrNotConfigured):
		log.Infof("[suggest] estimator disabled")
		return
	case err != nil:
		log.Warnf("[suggest] estimator disabled: %v", err)
		return
	}
	h.est = est
	h.coach = est
	log.Infof("[suggest] using %s estimator", est.Provider())
}

// requestLogger logs one line per request through zap.
func requestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Infow("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

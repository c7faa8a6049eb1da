package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vladimirvolkov/hoopshot/internal/config"
	"github.com/vladimirvolkov/hoopshot/internal/game"
	"github.com/vladimirvolkov/hoopshot/internal/logging"
	"github.com/vladimirvolkov/hoopshot/internal/middleware"
	"github.com/vladimirvolkov/hoopshot/internal/telemetry"
	"github.com/vladimirvolkov/hoopshot/internal/ws"
)

const shutdownTimeout = 10 * time.Second

// securityHeaders wraps a handler with common security response headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:; img-src 'self' data:")
		next.ServeHTTP(w, r)
	})
}

// health is the /health response body.
type health struct {
	ws.HubStats
	Gameplay telemetry.Totals `json:"gameplay"`
}

// GameManager starts a session for every accepted connection.
type GameManager struct {
	ctx     context.Context
	hub     *ws.Hub
	course  game.Course
	log     *zap.Logger
	metrics *telemetry.Metrics
}

func (gm *GameManager) CreateSession(conn *ws.Conn) {
	s := game.NewSession(conn, gm.course, gm.log, gm.metrics)
	s.Start(gm.ctx)
	go func() {
		<-s.Done()
		conn.Close()
		gm.hub.SessionEnded()
	}()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hoopshot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	course, err := cfg.Course()
	if err != nil {
		return err
	}
	recorder := telemetry.NewRecorder()
	otel.SetMeterProvider(recorder.Provider())
	defer recorder.Shutdown(context.Background())

	metrics, err := telemetry.New(otel.Meter("hoopshot"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewIPRateLimiter(ctx, cfg.MaxConnsPerIP, cfg.MsgRate, time.Second)

	manager := &GameManager{ctx: ctx, course: course, log: log, metrics: metrics}
	hub := ws.NewHub(manager, limiter, cfg.AllowedOrigins, cfg.MaxSessions, log)
	manager.hub = hub

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		totals, err := recorder.Totals(r.Context())
		if err != nil {
			log.Warn("metrics collect failed", zap.Error(err))
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(health{HubStats: hub.Stats(), Gameplay: totals}); err != nil {
			log.Warn("health encode failed", zap.Error(err))
		}
	})

	// Static files with no-cache headers (prevents stale JS in browser)
	fs := http.FileServer(http.Dir(cfg.StaticDir))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		fs.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           securityHeaders(mux),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("hoopshot server starting",
			zap.String("addr", server.Addr),
			zap.String("static", cfg.StaticDir),
			zap.Stringer("launch", course.LaunchPoint))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Hijacked WebSocket connections are not tracked by Shutdown; sessions stop via ctx
		return server.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}

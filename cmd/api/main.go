package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/bimakw/pulse-swap/internal/app"
	"github.com/bimakw/pulse-swap/internal/config"
	"github.com/bimakw/pulse-swap/internal/logging"
	"github.com/bimakw/pulse-swap/internal/presentation/handlers"
)

const (
	version = "0.3.0"
)

func main() {
	testnet := pflag.Bool("testnet", false, "use PulseChain testnet v4")
	pflag.Parse()

	network := ""
	if *testnet {
		network = config.Testnet
	}

	cfg, err := config.Load(network)
	if err != nil {
		bootLogger := logging.New("info", "console")
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize")
	}
	defer a.Close()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(version, cfg.Network.Name, cfg.Network.ChainID, a.Routers.Len())
	quoteHandler := handlers.NewQuoteHandler(a.Quotes, a.Tokens, cfg.DefaultSlippageBps)
	estimateHandler := handlers.NewEstimateHandler(a.Estimator, a.Tokens, cfg.WrappedNative())
	tokenHandler := handlers.NewTokenHandler(a.Tokens)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	// Routes
	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/quote", quoteHandler.GetQuote)
		r.Get("/estimate", estimateHandler.GetEstimate)
		r.Get("/tokens", tokenHandler.ListTokens)
	})

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Info().
			Str("version", version).
			Str("port", cfg.Port).
			Str("network", cfg.Network.Name).
			Msg("starting pulse-swap API")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
		return
	}
	logger.Info().Msg("server stopped")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/rulegridgo/internal/ctxlog"
)

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// newHealthMux serves /health and the Prometheus /metrics endpoint.
func (a *App) newHealthMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle("/metrics", a.metrics.Handler())
	return mux
}

// healthCheckServer initializes and runs the health check HTTP server.
func (a *App) healthCheckServer() {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Configuring health check server.")
	if a.config.HealthcheckPort <= 0 {
		logger.Warn("Health check server not started: disabled")
		return
	}

	addr := fmt.Sprintf(":%d", a.config.HealthcheckPort)
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           a.newHealthMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeHealthCheckServer() error {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Closing health check server...")

	if a.httpServer == nil {
		logger.Debug("Health check server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down health check server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed", "error", err)
		return err
	}

	logger.Debug("Health check server shut down gracefully.")
	return nil
}

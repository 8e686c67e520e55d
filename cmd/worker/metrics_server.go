package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	pkgconfig "deadline-notify/internal/pkg/config"
	"deadline-notify/internal/usecase/notify"
)

const defaultMetricsPort = 9090

type HealthResponse struct {
	Status string `json:"status"`
}

// ChannelHealthResponse reports every notification channel. Healthy is false
// when an enabled channel has its circuit breaker open.
type ChannelHealthResponse struct {
	Healthy  bool                         `json:"healthy"`
	Channels []notify.ChannelHealthStatus `json:"channels"`
}

// startMetricsServer serves newMetricsMux on METRICS_PORT in the background
// and shuts it down when ctx is cancelled.
func startMetricsServer(ctx context.Context, logger *slog.Logger, notifyService notify.Service) *http.Server {
	port := getMetricsPort()
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      newMetricsMux(notifyService),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
			return
		}
		logger.Info("metrics server stopped")
	}()

	return server
}

func newMetricsMux(notifyService notify.Service) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
	})
	mux.HandleFunc("/health/channels", channelHealthHandler(notifyService))
	return mux
}

func getMetricsPort() int {
	return pkgconfig.LoadEnvInt("METRICS_PORT", defaultMetricsPort, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 1, 65535)
	}).Value.(int)
}

func channelHealthHandler(notifyService notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if notifyService == nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "notification service not initialized",
			})
			return
		}

		resp := ChannelHealthResponse{Healthy: true, Channels: notifyService.GetChannelHealth()}
		for _, ch := range resp.Channels {
			if ch.Enabled && ch.CircuitBreakerOpen {
				resp.Healthy = false
				break
			}
		}

		status := http.StatusOK
		if !resp.Healthy {
			status = http.StatusServiceUnavailable
		}
		respondJSON(w, status, resp)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	repo     port.AnalysisJobRepository
	requests port.RequestPublisher
	maxRetry int
	logger   *zap.Logger
}

func NewHandlers(repo port.AnalysisJobRepository, requests port.RequestPublisher, maxRetries int, logger *zap.Logger) *Handlers {
	return &Handlers{repo: repo, requests: requests, maxRetry: maxRetries, logger: logger}
}

func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/analyses", h.CreateAnalysis).Methods(http.MethodPost)
	api.HandleFunc("/analyses/{id}", h.GetAnalysis).Methods(http.MethodGet)
	return r
}

// Start serves router on port in the background.
func Start(port int, router http.Handler, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server starting", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	return srv
}

func Shutdown(ctx context.Context, srv *http.Server, logger *zap.Logger) {
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http server shutdown", zap.Error(err))
	}
}

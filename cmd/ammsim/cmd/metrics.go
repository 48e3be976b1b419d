package cmd

import (
	"errors"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func metricsHandler() http.Handler {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(router)
}

// StartPrometheusServer serves /metrics on listen in a background goroutine.
// Errors after startup are logged, not returned.
func StartPrometheusServer(listen string, logger log.Logger) *http.Server {
	server := &http.Server{
		Addr:              listen,
		Handler:           metricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting prometheus server", "listen", listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("prometheus server error", "err", err)
		}
	}()
	return server
}

package daemon

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"amberpipe/internal/logging"
)

// apiServer serves /healthz, /status, and /metrics on the configured bind
// address. It is read-only; control flows through the IPC socket.
type apiServer struct {
	listener net.Listener
	server   *http.Server
	logger   *slog.Logger
}

func newAPIServer(bind string, d *Daemon, metrics *Metrics, logger *slog.Logger) (*apiServer, error) {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		status, statusErr := d.Status(r.Context())
		if statusErr != nil {
			http.Error(w, statusErr.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	api := &apiServer{
		listener: listener,
		server:   &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger:   logging.WithComponent(logger, "api"),
	}
	go func() {
		if serveErr := api.server.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			api.logger.Warn("api server stopped", logging.Error(serveErr))
		}
	}()
	api.logger.Info("api listening", logging.String("bind", listener.Addr().String()))
	return api, nil
}

// Addr returns the bound address, useful when the bind port is 0.
func (a *apiServer) Addr() string {
	return a.listener.Addr().String()
}

func (a *apiServer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = a.server.Shutdown(ctx)
}

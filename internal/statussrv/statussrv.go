// Package statussrv runs the optional HTTP sidecar: a JSON status endpoint
// modeled on the reference relay server's getStatus, and a Prometheus
// /metrics endpoint served straight off the Server's Registry.
package statussrv

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/host"

	"github.com/rfsd/rfsd/internal/multiplex"
)

// Server serves /status and /metrics on its own listener. It implements the
// supervisor Serve(ctx) contract used throughout this codebase.
type Server struct {
	Addr     string
	Sessions *multiplex.Table
	Registry *prometheus.Registry
	Log      *slog.Logger

	startedAt time.Time
}

// Serve binds Addr and serves until ctx is canceled or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	s.startedAt = time.Now()

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/status", s.getStatus)
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{}))

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: router}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	status := make(map[string]any)

	status["numSessions"] = s.Sessions.Len()
	status["uptimeSeconds"] = int(time.Since(s.startedAt).Seconds())
	status["goVersion"] = runtime.Version()
	status["goOS"] = runtime.GOOS
	status["goArch"] = runtime.GOARCH
	status["goMaxProcs"] = runtime.GOMAXPROCS(-1)

	if info, err := host.Info(); err == nil {
		status["hostUptimeSeconds"] = info.Uptime
		status["platform"] = info.Platform
		status["kernelVersion"] = info.KernelVersion
	}

	bs, err := json.MarshalIndent(status, "", "    ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(bs)
}

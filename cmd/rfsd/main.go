// Command rfsd serves a directory of files over a compact binary protocol:
// echo, directory listing, file size, coalesced range retrieval, and a
// remote shutdown request.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/thejerf/suture/v4"

	_ "github.com/rfsd/rfsd/lib/automaxprocs"

	"github.com/rfsd/rfsd/internal/connloop"
	"github.com/rfsd/rfsd/internal/dict"
	"github.com/rfsd/rfsd/internal/fsops"
	"github.com/rfsd/rfsd/internal/handler"
	"github.com/rfsd/rfsd/internal/metrics"
	"github.com/rfsd/rfsd/internal/multiplex"
	"github.com/rfsd/rfsd/internal/ratelimit"
	"github.com/rfsd/rfsd/internal/server"
	"github.com/rfsd/rfsd/internal/srvconfig"
	"github.com/rfsd/rfsd/internal/statussrv"
)

// CLI is the full set of flags and the one required positional argument: the
// path to the binary configuration file. Running with no argument at all is
// a usage error, reported by kong with exit status 1, matching the original
// argc < 2 contract.
type CLI struct {
	Config string `arg:"" help:"Path to the binary server configuration file."`

	DictPath         string `default:"(sample)compression.dict" help:"Path to the compression dictionary file."`
	Workers          int    `default:"20" help:"Number of worker goroutines in the connection pool."`
	QueueCapacity    int    `default:"1024" help:"Maximum number of connections queued waiting for a worker."`
	SessionCacheSize int    `default:"1024" help:"Capacity of the in-flight session table and file-size cache."`

	StatusAddr     string `help:"Address to serve /status and /metrics on. Disabled if unset." placeholder:"host:port"`
	GlobalRateBPS  int    `help:"Global file-retrieval byte rate limit, 0 to disable."`
	SessionRateBPS int    `help:"Per-session file-retrieval byte rate limit, 0 to disable."`

	Debug bool `help:"Enable debug-level logging."`
}

func main() {
	cli, err := parseCLI(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "rfsd:", err)
		os.Exit(1)
	}

	if err := run(cli); err != nil {
		fmt.Fprintln(os.Stderr, "rfsd:", err)
		os.Exit(1)
	}
}

// parseCLI parses args against CLI without kong's default os.Exit-on-error
// behavior, so the zero/two-or-more positional argument contract can be
// exercised from a test. A missing Config or any unexpected extra positional
// argument comes back as a plain error here; main turns that into the
// process's exit status 1.
func parseCLI(args []string) (*CLI, error) {
	var cli CLI
	k, err := kong.New(&cli, kong.Description("rfsd serves files over a compact binary wire protocol."))
	if err != nil {
		return nil, err
	}
	if _, err := k.Parse(args); err != nil {
		return nil, err
	}
	return &cli, nil
}

func run(cli *CLI) error {
	logLevel := slog.LevelInfo
	if cli.Debug {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)

	cfg, err := srvconfig.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dictionary, err := dict.Load(cli.DictPath)
	if err != nil {
		return fmt.Errorf("loading compression dictionary: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Addr(), err)
	}

	reg := prometheus.NewRegistry()
	metricsSet := metrics.New(reg)

	var limiters *ratelimit.Limiters
	if cli.GlobalRateBPS > 0 || cli.SessionRateBPS > 0 {
		limiters = ratelimit.New(cli.GlobalRateBPS, cli.SessionRateBPS)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := &handler.Deps{
		Root:     fsops.NewRoot(cfg.Directory, cli.SessionCacheSize),
		Dict:     dictionary,
		Sessions: multiplex.NewTable(cli.SessionCacheSize),
		Log:      log,
		Metrics:  metricsSet,
		Limiters: limiters,
	}
	deps.Shutdown = func() {
		log.Info("shutdown requested by client")
		cancel()
	}

	pool := server.NewPool(cli.Workers, cli.QueueCapacity, connServe(deps), log, metricsSet)
	acceptor := server.NewAcceptor(ln, pool, log, metricsSet)

	main := suture.New("rfsd", suture.Spec{})
	main.Add(pool)
	main.Add(acceptor)

	if cli.StatusAddr != "" {
		main.Add(&statussrv.Server{
			Addr:     cli.StatusAddr,
			Sessions: deps.Sessions,
			Registry: reg,
			Log:      log,
		})
	}

	stop := notifyStop(cancel)
	defer stop()

	log.Info("rfsd starting", "addr", cfg.Addr(), "directory", cfg.Directory, "statusAddr", cli.StatusAddr)
	return main.Serve(ctx)
}

// connServe adapts connloop.Serve to the signature server.Pool expects.
func connServe(d *handler.Deps) func(ctx context.Context, conn net.Conn) {
	return func(ctx context.Context, conn net.Conn) {
		connloop.Serve(ctx, conn, d)
	}
}

// notifyStop cancels the server's context on SIGINT/SIGTERM, the same clean
// shutdown path a client's shutdown request takes.
func notifyStop(cancel context.CancelFunc) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-done:
		}
	}()
	return func() {
		close(done)
		signal.Stop(sigCh)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/gitrdm/gofinite/internal/config"
)

// flagValues holds raw flag values. They are copied over the loaded
// configuration only when the user set them explicitly.
type flagValues struct {
	configPath      string
	logLevel        string
	metricsAddr     string
	tracing         bool
	output          string
	outputSymbols   []string
	allowIncomplete bool

	mode            string
	workers         int
	ignoreConstants bool
	checkSymbols    []string
	discriminators  string
	timeout         time.Duration
	storePath       string
	storeInMemory   bool
}

// app carries state shared by every command of one invocation.
type app struct {
	flags  flagValues
	cfg    config.Config
	logger *slog.Logger
	stderr io.Writer

	closers []func(context.Context) error
}

// run builds the command tree, executes it and returns the exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		a.log().Error("finterp failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "finterp",
		Short: "Work with finite interpretations of first-order vocabularies",
		Long: `finterp reads finite interpretations (models) and removes isomorphic
duplicates, computes canonical forms, keeps models by formula
satisfaction, evaluates formulas and prints models in several styles.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config file (YAML or JSON)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (host:port)")
	pf.BoolVar(&a.flags.tracing, "trace", false, "export trace spans to stderr")
	pf.StringVarP(&a.flags.output, "output", "o", "", "output style: yaml, standard or tabular (default: standard on a terminal, yaml otherwise)")
	pf.StringSliceVar(&a.flags.outputSymbols, "output-symbols", nil, "print only these symbols (name or name/arity)")
	pf.BoolVar(&a.flags.allowIncomplete, "allow-incomplete", false, "accept undefined function entries")

	root.AddCommand(
		a.isofilterCmd(),
		a.canonCmd(),
		a.profileCmd(),
		a.formatCmd(),
		a.filterCmd(),
		a.evalCmd(),
		a.storeCmd(),
		a.versionCmd(),
	)
	return root
}

// override copies v into dst when the named flag was set on cmd.
func override[T any](cmd *cobra.Command, name string, dst *T, v T) {
	if cmd.Flags().Changed(name) {
		*dst = v
	}
}

// setup loads configuration, applies flags and starts logging, tracing and
// the metrics endpoint.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	f := a.flags
	cfg, err := config.Load(f.configPath, func(cfg *config.Config) {
		override(cmd, "log-level", &cfg.Observability.LogLevel, f.logLevel)
		override(cmd, "metrics-addr", &cfg.Observability.MetricsAddr, f.metricsAddr)
		override(cmd, "trace", &cfg.Observability.Tracing, f.tracing)
		override(cmd, "output-symbols", &cfg.Filter.OutputSymbols, f.outputSymbols)
		override(cmd, "allow-incomplete", &cfg.Filter.AllowIncomplete, f.allowIncomplete)
		override(cmd, "mode", &cfg.Filter.Mode, f.mode)
		override(cmd, "workers", &cfg.Filter.Workers, f.workers)
		override(cmd, "ignore-constants", &cfg.Filter.IgnoreConstants, f.ignoreConstants)
		override(cmd, "check", &cfg.Filter.CheckSymbols, f.checkSymbols)
		override(cmd, "discriminators", &cfg.Filter.Discriminators, f.discriminators)
		override(cmd, "timeout", &cfg.Filter.Timeout, f.timeout)
		override(cmd, "store", &cfg.Store.Path, f.storePath)
		override(cmd, "store-in-memory", &cfg.Store.InMemory, f.storeInMemory)
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Observability.LogLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	if cfg.Observability.Tracing {
		if err := a.startTracing(); err != nil {
			return err
		}
	}
	if cfg.Observability.MetricsAddr != "" {
		if err := a.serveMetrics(cfg.Observability.MetricsAddr); err != nil {
			return err
		}
	}
	a.logger.Debug("configuration loaded",
		slog.String("command", cmd.Name()),
		slog.String("config", f.configPath),
		slog.String("mode", cfg.Filter.Mode),
		slog.Int("workers", cfg.Filter.Workers))
	return nil
}

func (a *app) startTracing() error {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(a.stderr), stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	a.closers = append(a.closers, tp.Shutdown)
	return nil
}

func (a *app) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log().Error("metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	a.log().Info("serving metrics", slog.String("addr", ln.Addr().String()))
	a.closers = append(a.closers, srv.Shutdown)
	return nil
}

// close releases everything setup started, in reverse order.
func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}

// log returns the configured logger, or a stderr logger when setup has not
// run (for example on a flag parse error).
func (a *app) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.New(slog.NewTextHandler(a.stderr, nil))
}

// searchContext applies the configured timeout to ctx.
func (a *app) searchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Filter.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Filter.Timeout)
	}
	return context.WithCancel(ctx)
}

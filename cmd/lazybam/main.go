package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/scttfrdmn/lazybam-go/pkg/lazybam"
)

var (
	logLevel    string
	metricsAddr string
	cfg         = lazybam.NewConfig()

	logger  log.Logger = log.NewNopLogger()
	metrics *lazybam.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "lazybam",
	Short: "lazybam - batched, lazily decoded BAM reading",
	Long: `lazybam reads BAM alignment files in batches and decodes record
fields only when they are asked for.

Inputs may be local paths, "-" for stdin, or s3://bucket/key URIs.
Zstd-compressed BAM files are unwrapped transparently.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(logLevel)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if metricsAddr != "" {
			metrics = startMetricsServer(metricsAddr)
		}
		return nil
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&cfg.BatchSize, "batch-size", 1000,
		"Records per batch")
	rootCmd.PersistentFlags().IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency,
		"BGZF decompression goroutines")
	rootCmd.PersistentFlags().IntVar(&cfg.Workers, "workers", cfg.Workers,
		"Goroutines used to decode each batch")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address (e.g. :10001)")

	rootCmd.AddCommand(headerCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("lazybam-go version 0.1.0")
		fmt.Println("Batched, lazily decoded BAM reader")
	},
}

func newLogger(name string) (log.Logger, error) {
	var opt level.Option
	switch name {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		return nil, fmt.Errorf("invalid log level %q", name)
	}

	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	l = log.With(l, "ts", log.DefaultTimestampUTC)
	return level.NewFilter(l, opt), nil
}

func startMetricsServer(addr string) *lazybam.Metrics {
	reg := prometheus.NewRegistry()
	m := lazybam.NewMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		level.Info(logger).Log("msg", "starting metrics server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			level.Error(logger).Log("msg", "metrics server failed", "err", err)
		}
	}()
	return m
}

// openReader opens path with the global config, logger and metrics.
func openReader(ctx context.Context, path string, observers ...lazybam.Observer) (*lazybam.Reader, error) {
	if metrics != nil {
		observers = append(observers, metrics.Observe)
	}

	opts := []lazybam.Option{lazybam.WithLogger(logger)}
	if len(observers) > 0 {
		opts = append(opts, lazybam.WithObserver(func(s lazybam.BatchStats) {
			for _, o := range observers {
				o(s)
			}
		}))
	}

	r, err := lazybam.Open(ctx, path, cfg, opts...)
	if err != nil {
		return nil, err
	}
	level.Debug(logger).Log("msg", "opened input", "path", path, "reader", r.ID(), "batch_size", r.BatchSize())
	return r, nil
}

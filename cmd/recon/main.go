package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mfonekpo/springer-capital/internal/config"
	"github.com/mfonekpo/springer-capital/internal/logging"
	"github.com/mfonekpo/springer-capital/internal/metrics"
	"github.com/mfonekpo/springer-capital/internal/metrics/datadog"
	"github.com/mfonekpo/springer-capital/internal/metrics/prompush"
	"github.com/mfonekpo/springer-capital/internal/schedule"

	// register all backends with the storage factory.
	_ "github.com/mfonekpo/springer-capital/internal/storage/all"
)

// main loads the job config, sets up logging and metrics, then runs the
// reconciliation once or on the configured schedule.
func main() {
	var (
		cfgPath  string
		validate bool
	)
	flag.StringVar(&cfgPath, "config", "configs/recon.yaml", "job config path (YAML or JSON)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable debug logs")
	flag.Parse()

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	job, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	issues := config.ValidateJob(job)
	for _, iss := range issues {
		fmt.Fprintln(os.Stderr, iss.Error())
	}
	if config.HasErrors(issues) {
		fatalf("configuration is invalid: %s", cfgPath)
	}
	if validate {
		fmt.Fprintf(os.Stderr, "configuration is valid: %s\n", cfgPath)
		return
	}

	level := job.Log.Level
	if *verbose {
		level = "debug"
	}
	log, err := logging.New(logging.Config{Service: job.Job, Level: level, Format: job.Log.Format})
	if err != nil {
		fatalf("%v", err)
	}
	defer func() { _ = log.Sync() }()

	closeMetrics := setupMetrics(job, log)
	defer closeMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if job.Schedule.Every > 0 {
		err = schedule.Every(ctx, job.Schedule.Every, job.Job, func(ctx context.Context) error {
			_, err := runOnce(ctx, job, os.Stdout, log)
			flushMetrics(log)
			return err
		}, log)
	} else {
		_, err = runOnce(ctx, job, os.Stdout, log)
	}
	if err != nil {
		log.Error("run failed", zap.Error(err))
		closeMetrics()
		_ = log.Sync()
		os.Exit(1)
	}
}

// setupMetrics installs the configured backend. The returned func flushes
// and releases it and is safe to call more than once.
func setupMetrics(job config.Job, log *zap.Logger) func() {
	nop := func() {}
	switch job.Metrics.Backend {
	case "pushgateway":
		b, err := prompush.NewBackend(job.Job, job.Metrics.URL)
		if err != nil {
			log.Warn("metrics: failed to init pushgateway backend; using nop", zap.Error(err))
			return nop
		}
		log.Info("metrics: pushgateway", zap.String("url", job.Metrics.URL))
		metrics.SetBackend(b)
		return sync.OnceFunc(func() { flushMetrics(log) })

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       job.Metrics.Addr,
			Namespace:  job.Metrics.Namespace,
			GlobalTags: []string{"job:" + job.Job},
		})
		if err != nil {
			log.Warn("metrics: failed to init datadog backend; using nop", zap.Error(err))
			return nop
		}
		log.Info("metrics: datadog", zap.String("addr", job.Metrics.Addr))
		metrics.SetBackend(b)
		return sync.OnceFunc(func() {
			flushMetrics(log)
			if err := b.Close(); err != nil {
				log.Warn("metrics: close", zap.Error(err))
			}
		})

	default:
		log.Debug("metrics: disabled", zap.String("backend", job.Metrics.Backend))
		return nop
	}
}

func flushMetrics(log *zap.Logger) {
	if err := metrics.Flush(); err != nil {
		log.Warn("metrics: flush error", zap.Error(err))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

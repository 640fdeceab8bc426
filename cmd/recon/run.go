// This file wires one reconciliation run end to end: load the CSV inputs,
// clean and profile them, reconcile, then hand the report to the console, the
// file exporters and the optional database sink.
package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mfonekpo/springer-capital/internal/clean"
	"github.com/mfonekpo/springer-capital/internal/config"
	"github.com/mfonekpo/springer-capital/internal/datasource"
	"github.com/mfonekpo/springer-capital/internal/datasource/file"
	"github.com/mfonekpo/springer-capital/internal/datasource/httpsrc"
	"github.com/mfonekpo/springer-capital/internal/datasource/s3src"
	"github.com/mfonekpo/springer-capital/internal/domain"
	"github.com/mfonekpo/springer-capital/internal/export"
	"github.com/mfonekpo/springer-capital/internal/metrics"
	pcsv "github.com/mfonekpo/springer-capital/internal/parser/csv"
	"github.com/mfonekpo/springer-capital/internal/profile"
	"github.com/mfonekpo/springer-capital/internal/recon"
	"github.com/mfonekpo/springer-capital/internal/render"
	"github.com/mfonekpo/springer-capital/internal/source"
	"github.com/mfonekpo/springer-capital/internal/storage"
)

// Function variables used as test seams.
var (
	newRepositoryFn = storage.New
	openCatalogFn   = openCatalog
	newRunIDFn      = uuid.NewString
)

func openCatalog(ctx context.Context, src config.Source) (datasource.Catalog, error) {
	switch src.Kind {
	case "", "file":
		return file.NewDir(src.Dir), nil
	case "s3":
		return s3src.New(ctx, s3src.Config{
			Bucket:          src.Bucket,
			Prefix:          src.Prefix,
			Region:          src.Region,
			Endpoint:        src.Endpoint,
			AccessKeyID:     src.AccessKeyID,
			SecretAccessKey: src.SecretAccessKey,
		})
	case "http":
		return httpsrc.New(httpsrc.Config{URLs: src.URLs, MaxRetries: src.MaxRetries})
	default:
		return nil, fmt.Errorf("unsupported source kind %q", src.Kind)
	}
}

// step times fn and records its outcome under name.
func step(job, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(job, name, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// runOnce performs one full run. Console output goes to out.
func runOnce(ctx context.Context, job config.Job, out io.Writer, log *zap.Logger) (domain.Report, error) {
	log = log.With(zap.String("run_id", newRunIDFn()), zap.String("job", job.Job))
	start := time.Now()
	log.Info("run: started", zap.String("source", job.Source.Kind), zap.String("storage", job.Storage.Kind))

	evalDate, err := job.Rules.EvaluationTime()
	if err != nil {
		return domain.Report{}, err
	}

	var reg *source.Registry
	err = step(job.Job, "load", func() error {
		cat, err := openCatalogFn(ctx, job.Source)
		if err != nil {
			return err
		}
		var st source.LoadStats
		reg, st, err = source.Load(ctx, cat, source.LoadOptions{
			Parser: pcsv.Options{
				Comma:     job.Parser.CommaRune(),
				TrimSpace: job.Parser.TrimSpace,
				HeaderMap: job.Parser.HeaderMap,
			},
			Workers: job.Source.Workers,
		}, log)
		if err != nil {
			return err
		}
		metrics.RecordRow(job.Job, "parse_errors", int64(st.ParseErrors))
		log.Info("run: loaded", zap.Int("files", st.Files), zap.Strings("failed", st.Failed), zap.Int("parse_errors", st.ParseErrors))
		return nil
	})
	if err != nil {
		return domain.Report{}, err
	}

	_ = step(job.Job, "clean", func() error {
		reg = source.NewRegistry(clean.All(reg.Tables(), log)...)
		return nil
	})

	if job.Output.PrintProfiles {
		if err := render.Profiles(out, profile.All(reg.Tables())); err != nil {
			log.Warn("run: print profiles", zap.Error(err))
		}
	}

	var rep domain.Report
	err = step(job.Job, "reconcile", func() error {
		eng := recon.New(recon.Options{
			EvaluationDate:  evalDate,
			DefaultTimezone: job.Rules.DefaultTimezone,
			Workers:         job.Rules.Workers,
		}, log)
		var err error
		rep, err = eng.Run(ctx, source.Bind(reg))
		return err
	})
	if err != nil {
		return domain.Report{}, err
	}
	metrics.RecordRow(job.Job, "referrals", int64(len(rep.Rows)))
	metrics.RecordRow(job.Job, "valid", int64(rep.Valid))
	metrics.RecordRow(job.Job, "invalid", int64(rep.Invalid))

	if job.Output.PrintRows > 0 {
		if err := render.Report(out, rep, job.Output.PrintRows); err != nil {
			log.Warn("run: print report", zap.Error(err))
		}
	}

	err = step(job.Job, "export", func() error {
		if job.Output.CSV != "" {
			if err := export.WriteCSVFile(job.Output.CSV, rep); err != nil {
				return err
			}
			log.Info("run: wrote csv", zap.String("path", job.Output.CSV))
		}
		if job.Output.XLSX != "" {
			if err := export.WriteXLSX(job.Output.XLSX, rep); err != nil {
				return err
			}
			log.Info("run: wrote xlsx", zap.String("path", job.Output.XLSX))
		}
		return nil
	})
	if err != nil {
		return rep, err
	}

	if job.Storage.Kind != "" {
		err = step(job.Job, "store", func() error {
			return store(ctx, job.Job, job.Storage, rep, log)
		})
		if err != nil {
			return rep, err
		}
	}

	log.Info("run: completed",
		zap.Int("referrals", len(rep.Rows)),
		zap.Int("valid", rep.Valid),
		zap.Int("invalid", rep.Invalid),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
	)
	return rep, nil
}

func store(ctx context.Context, jobName string, cfg config.Storage, rep domain.Report, log *zap.Logger) error {
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:    cfg.Kind,
		DSN:     cfg.DSN,
		Table:   cfg.Table,
		Columns: domain.ReportColumns,
	})
	if err != nil {
		return err
	}
	defer repo.Close()

	if cfg.AutoCreateTable {
		if err := storage.EnsureTable(ctx, cfg.Kind, repo, storage.ReportTable(cfg.Table)); err != nil {
			return fmt.Errorf("apply DDL: %w", err)
		}
	}
	n, err := storage.WriteReport(ctx, repo, rep, cfg.BatchSize, log)
	if err != nil {
		return err
	}
	metrics.RecordRow(jobName, "stored", n)
	log.Info("run: stored report", zap.String("table", cfg.Table), zap.Int64("rows", n))
	return nil
}

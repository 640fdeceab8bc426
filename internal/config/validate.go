package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap/zapcore"
)

// IssueSeverity is the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one lint finding. Path is the dotted key, e.g. "storage.dsn".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateJob lints j without changing it.
func ValidateJob(j Job) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(j.Job) == "" {
		add(SeverityError, "job", "job must not be empty; it labels metrics and logs")
	}

	switch j.Source.Kind {
	case "file":
		if strings.TrimSpace(j.Source.Dir) == "" {
			add(SeverityError, "source.dir", "source.dir is required for kind=file")
		}
	case "s3":
		if strings.TrimSpace(j.Source.Bucket) == "" {
			add(SeverityError, "source.bucket", "source.bucket is required for kind=s3")
		}
		if (j.Source.AccessKeyID == "") != (j.Source.SecretAccessKey == "") {
			add(SeverityWarning, "source.access_key_id", "access key id and secret should be set together; falling back to the default credential chain")
		}
	case "http":
		if len(j.Source.URLs) == 0 {
			add(SeverityError, "source.urls", "source.urls is required for kind=http")
		}
		if j.Source.MaxRetries < 0 {
			add(SeverityError, "source.max_retries", "must be >= 0")
		}
	default:
		add(SeverityError, "source.kind", "unsupported source kind %q (want file, s3 or http)", j.Source.Kind)
	}
	if j.Source.Workers < 0 {
		add(SeverityError, "source.workers", "must be >= 0")
	}

	if n := utf8.RuneCountInString(j.Parser.Comma); n > 1 {
		add(SeverityError, "parser.comma", "must be a single character, got %q", j.Parser.Comma)
	}

	if _, err := j.Rules.EvaluationTime(); err != nil {
		add(SeverityError, "rules.evaluation_date", "must be a %s date: %v", DateLayout, err)
	}
	if tz := strings.TrimSpace(j.Rules.DefaultTimezone); tz == "" || tz == "Local" {
		add(SeverityError, "rules.default_timezone", "must name an IANA zone")
	} else if _, err := time.LoadLocation(tz); err != nil {
		add(SeverityError, "rules.default_timezone", "unknown zone %q", tz)
	}
	if j.Rules.Workers < 0 {
		add(SeverityError, "rules.workers", "must be >= 0")
	}

	if j.Output.PrintRows < 0 {
		add(SeverityError, "output.print_rows", "must be >= 0")
	}

	switch j.Storage.Kind {
	case "":
	case "postgres", "sqlite", "mssql":
		if strings.TrimSpace(j.Storage.DSN) == "" {
			add(SeverityError, "storage.dsn", "storage.dsn is required for kind=%s", j.Storage.Kind)
		}
		if strings.TrimSpace(j.Storage.Table) == "" {
			add(SeverityError, "storage.table", "storage.table is required")
		}
		if j.Storage.BatchSize <= 0 {
			add(SeverityWarning, "storage.batch_size", "non-positive batch size; the default is used")
		}
	default:
		add(SeverityError, "storage.kind", "unsupported storage kind %q", j.Storage.Kind)
	}

	switch j.Metrics.Backend {
	case "", "none":
	case "pushgateway":
		if j.Metrics.URL == "" {
			add(SeverityError, "metrics.url", "metrics.url is required for the pushgateway backend")
		}
	case "datadog":
		if j.Metrics.Addr == "" {
			add(SeverityError, "metrics.addr", "metrics.addr is required for the datadog backend")
		}
	default:
		add(SeverityError, "metrics.backend", "unsupported metrics backend %q", j.Metrics.Backend)
	}

	if j.Schedule.Every < 0 {
		add(SeverityError, "schedule.every", "must not be negative")
	} else if j.Schedule.Every > 0 && j.Schedule.Every < time.Minute {
		add(SeverityWarning, "schedule.every", "runs more often than once a minute")
	}

	if _, err := zapcore.ParseLevel(j.Log.Level); err != nil {
		add(SeverityError, "log.level", "unknown level %q", j.Log.Level)
	}
	if f := strings.ToLower(j.Log.Format); f != "json" && f != "console" && f != "" {
		add(SeverityWarning, "log.format", "unknown format %q; json is used", j.Log.Format)
	}

	return issues
}

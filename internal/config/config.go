// Package config decodes and lints the reconciliation job file.
//
// A job is read with viper from JSON or YAML. Every key has a default, and any
// key can be overridden from the environment with the RECON_ prefix, dots
// replaced by underscores (RECON_SOURCE_DIR, RECON_STORAGE_DSN, ...).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "RECON"

// DateLayout is the layout of rules.evaluation_date.
const DateLayout = "2006-01-02"

// Job is one reconciliation job.
type Job struct {
	Job      string   `mapstructure:"job"`
	Source   Source   `mapstructure:"source"`
	Parser   Parser   `mapstructure:"parser"`
	Rules    Rules    `mapstructure:"rules"`
	Output   Output   `mapstructure:"output"`
	Storage  Storage  `mapstructure:"storage"`
	Metrics  Metrics  `mapstructure:"metrics"`
	Schedule Schedule `mapstructure:"schedule"`
	Log      Log      `mapstructure:"log"`
}

// Source says where the CSV inputs live.
type Source struct {
	Kind string `mapstructure:"kind"` // "file", "s3" or "http"
	Dir  string `mapstructure:"dir"`

	// URLs lists the CSV exports fetched by kind=http.
	URLs       []string `mapstructure:"urls"`
	MaxRetries int      `mapstructure:"max_retries"`

	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`

	// Workers bounds concurrent file loads.
	Workers int `mapstructure:"workers"`
}

// Parser tunes CSV parsing.
type Parser struct {
	Comma     string            `mapstructure:"comma"`
	TrimSpace bool              `mapstructure:"trim_space"`
	HeaderMap map[string]string `mapstructure:"header_map"`
}

// CommaRune returns the first rune of Comma, or ','.
func (p Parser) CommaRune() rune {
	for _, r := range p.Comma {
		return r
	}
	return ','
}

// Rules are the engine's fixed parameters.
type Rules struct {
	EvaluationDate  string `mapstructure:"evaluation_date"`
	DefaultTimezone string `mapstructure:"default_timezone"`
	Workers         int    `mapstructure:"workers"`
}

// EvaluationTime parses EvaluationDate as a UTC midnight.
func (r Rules) EvaluationTime() (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(r.EvaluationDate))
	if err != nil {
		return time.Time{}, fmt.Errorf("config: rules.evaluation_date: %w", err)
	}
	return t, nil
}

// Output controls the human-facing outputs. Empty paths disable a writer.
type Output struct {
	CSV           string `mapstructure:"csv"`
	XLSX          string `mapstructure:"xlsx"`
	PrintRows     int    `mapstructure:"print_rows"`
	PrintProfiles bool   `mapstructure:"print_profiles"`
}

// Storage is the optional report sink. An empty Kind disables it.
type Storage struct {
	Kind            string `mapstructure:"kind"`
	DSN             string `mapstructure:"dsn"`
	Table           string `mapstructure:"table"`
	AutoCreateTable bool   `mapstructure:"auto_create_table"`
	BatchSize       int    `mapstructure:"batch_size"`
}

// Metrics selects the metrics backend: "none", "pushgateway" or "datadog".
type Metrics struct {
	Backend   string `mapstructure:"backend"`
	URL       string `mapstructure:"url"`  // pushgateway
	Addr      string `mapstructure:"addr"` // datadog agent
	Namespace string `mapstructure:"namespace"`
}

// Schedule repeats the run every Every; zero runs once.
type Schedule struct {
	Every time.Duration `mapstructure:"every"`
}

// Log configures the process logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"job":                       "recon",
	"source.kind":               "file",
	"source.dir":                "data",
	"source.bucket":             "",
	"source.prefix":             "",
	"source.region":             "",
	"source.endpoint":           "",
	"source.access_key_id":      "",
	"source.secret_access_key":  "",
	"source.urls":               []string{},
	"source.max_retries":        3,
	"source.workers":            4,
	"parser.comma":              ",",
	"parser.trim_space":         true,
	"rules.evaluation_date":     "2025-12-09",
	"rules.default_timezone":    "Asia/Jakarta",
	"rules.workers":             0,
	"output.csv":                "",
	"output.xlsx":               "",
	"output.print_rows":         20,
	"output.print_profiles":     false,
	"storage.kind":              "",
	"storage.dsn":               "",
	"storage.table":             "referral_report",
	"storage.auto_create_table": true,
	"storage.batch_size":        500,
	"metrics.backend":           "none",
	"metrics.url":               "",
	"metrics.addr":              "",
	"metrics.namespace":         "",
	"schedule.every":            "0s",
	"log.level":                 "info",
	"log.format":                "json",
}

// Load reads the job file at path (JSON or YAML by extension) over the
// defaults and applies environment overrides. An empty path yields defaults
// plus environment.
func Load(path string) (Job, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Job{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var j Job
	if err := v.Unmarshal(&j); err != nil {
		return Job{}, fmt.Errorf("config: decode: %w", err)
	}
	return j, nil
}

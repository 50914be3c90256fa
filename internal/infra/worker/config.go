// Package worker provides the scheduling scaffolding around the
// collection pipeline: configuration, health endpoints, and job metrics.
package worker

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"briefly/pkg/config"
)

// Config controls the scheduled execution of the pipeline.
//
// Loading is fail-open: an invalid environment value falls back to the
// default with a warning, so a typo in deployment config degrades the
// schedule instead of crashing the worker.
type Config struct {
	// CronSchedule is the cron expression for pipeline runs.
	// Default: "0 7 * * *" (every day at 7:00).
	CronSchedule string

	// Timezone is the IANA timezone for cron scheduling.
	// Default: "Asia/Singapore".
	Timezone string

	// RunTimeout bounds a single pipeline run. Default: 15 minutes.
	RunTimeout time.Duration

	// HealthPort serves /health, /health/ready, and /metrics.
	// Default: 9091.
	HealthPort int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		CronSchedule: "0 7 * * *",
		Timezone:     "Asia/Singapore",
		RunTimeout:   15 * time.Minute,
		HealthPort:   9091,
	}
}

// fieldCheck pairs one configuration field with its validation result
// and the action that restores the default. Validate and
// LoadConfigFromEnv share these, so the two cannot drift apart.
type fieldCheck struct {
	field string
	err   error
	reset func()
}

func (c *Config) fieldChecks(defaults Config) []fieldCheck {
	return []fieldCheck{
		{"cron schedule", validateCronSchedule(c.CronSchedule), func() { c.CronSchedule = defaults.CronSchedule }},
		{"timezone", validateTimezone(c.Timezone), func() { c.Timezone = defaults.Timezone }},
		{"run timeout", validateRunTimeout(c.RunTimeout), func() { c.RunTimeout = defaults.RunTimeout }},
		{"health port", validateHealthPort(c.HealthPort), func() { c.HealthPort = defaults.HealthPort }},
	}
}

func validateCronSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("%q: %w", expr, err)
	}
	return nil
}

func validateTimezone(name string) error {
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	return nil
}

func validateRunTimeout(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", d)
	}
	return nil
}

func validateHealthPort(port int) error {
	if port < 1024 || port > 65535 {
		return fmt.Errorf("must be in 1024-65535, got %d", port)
	}
	return nil
}

// Validate checks the configuration values. All failures are collected
// so a broken deployment surfaces every problem at once.
func (c *Config) Validate() error {
	var errs []error
	for _, check := range c.fieldChecks(DefaultConfig()) {
		if check.err != nil {
			errs = append(errs, fmt.Errorf("%s %w", check.field, check.err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// Location resolves the configured timezone. Validate must have passed.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv loads worker configuration from the environment,
// falling back per field to the default on invalid values. It never
// returns an unusable configuration.
//
// Environment variables:
//   - PIPELINE_CRON_SCHEDULE: cron expression
//   - PIPELINE_TIMEZONE: IANA timezone name
//   - PIPELINE_TIMEOUT: duration string, e.g. "15m"
//   - WORKER_HEALTH_PORT: integer 1024-65535
func LoadConfigFromEnv(logger *slog.Logger, metrics *JobMetrics) Config {
	defaults := DefaultConfig()
	cfg := Config{
		CronSchedule: config.GetEnvString("PIPELINE_CRON_SCHEDULE", defaults.CronSchedule),
		Timezone:     config.GetEnvString("PIPELINE_TIMEZONE", defaults.Timezone),
		RunTimeout:   config.GetEnvDuration("PIPELINE_TIMEOUT", defaults.RunTimeout),
		HealthPort:   config.GetEnvInt("WORKER_HEALTH_PORT", defaults.HealthPort),
	}

	for _, check := range cfg.fieldChecks(defaults) {
		if check.err == nil {
			continue
		}
		logger.Warn("invalid worker configuration, using default",
			slog.String("field", check.field),
			slog.Any("error", check.err))
		metrics.RecordConfigFallback(strings.ReplaceAll(check.field, " ", "_"))
		check.reset()
	}

	return cfg
}

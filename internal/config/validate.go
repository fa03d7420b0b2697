package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/heartmarshall/sanskrit-lexicon/internal/domain"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "warning", "error"}
	validLogFormats = []string{"json", "text"}
	validSSLModes   = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}
)

// Validate checks cross-field rules after loading; Load calls it
// automatically. All violations are reported together as a
// *domain.ValidationError.
func (c *Config) Validate() error {
	var errs []domain.FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, domain.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// A dry run never connects, so the database section is not checked.
	if !c.Migration.DryRun {
		if c.Database.User == "" {
			add("database.user", "required")
		}
		if c.Database.Name == "" {
			add("database.name", "required")
		}
		if c.Database.Host == "" {
			add("database.host", "required")
		}
		if !validPort(c.Database.Port) {
			add("database.port", "must be in 1..65535 (got %d)", c.Database.Port)
		}
		if !slices.Contains(validSSLModes, c.Database.SSLMode) {
			add("database.sslmode", "unknown mode %q", c.Database.SSLMode)
		}
		if c.Database.MaxConns < 1 {
			add("database.max_conns", "must be >= 1 (got %d)", c.Database.MaxConns)
		}
		if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
			add("database.min_conns", "must be in 0..max_conns (got %d)", c.Database.MinConns)
		}
	}

	if !validPort(c.App.Port) {
		add("app.port", "must be in 1..65535 (got %d)", c.App.Port)
	}
	if strings.TrimSpace(c.App.Env) == "" {
		add("app.env", "required")
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		add("log.level", "unknown level %q", c.Log.Level)
	}
	if !slices.Contains(validLogFormats, strings.ToLower(c.Log.Format)) {
		add("log.format", "unknown format %q", c.Log.Format)
	}

	if c.Migration.SourcePath == "" {
		add("migration.source_path", "required")
	}
	if c.Migration.ProgressEvery < 0 {
		add("migration.progress_every", "must be >= 0 (got %d)", c.Migration.ProgressEvery)
	}
	if c.Migration.Timeout <= 0 {
		add("migration.timeout", "must be > 0 (got %s)", c.Migration.Timeout)
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func validPort(p int) bool { return p > 0 && p <= 65535 }


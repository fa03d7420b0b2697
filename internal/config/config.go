package config

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config is the root configuration of the migrator.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Migration MigrationConfig `yaml:"migration"`
}

// AppConfig holds process-wide settings. Port is kept for deployments that
// share one environment file with the lexicon API.
type AppConfig struct {
	Env  string `yaml:"env"  env:"APP_ENV" env-default:"development"`
	Port int    `yaml:"port" env:"PORT"    env-default:"3001"`
}

// DatabaseConfig holds PostgreSQL connection and pool settings. User and Name
// are required unless the migration is a dry run.
type DatabaseConfig struct {
	User            string        `yaml:"user"               env:"DB_USER"`
	Password        string        `yaml:"password"           env:"DB_PASSWORD"`
	Host            string        `yaml:"host"               env:"DB_HOST"               env-default:"localhost"`
	Port            int           `yaml:"port"               env:"DB_PORT"               env-default:"5432"`
	Name            string        `yaml:"name"               env:"DB_NAME"`
	SSLMode         string        `yaml:"sslmode"            env:"DB_SSLMODE"            env-default:"disable"`
	MaxConns        int32         `yaml:"max_conns"          env:"DB_MAX_CONNS"          env-default:"4"`
	MinConns        int32         `yaml:"min_conns"          env:"DB_MIN_CONNS"          env-default:"0"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DB_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// DSN returns the connection URL built from the individual fields.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	if d.Password == "" {
		u.User = url.User(d.User)
	}
	return u.String()
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// MigrationConfig holds settings of a migration run.
type MigrationConfig struct {
	SourcePath    string        `yaml:"source_path"    env:"MIGRATION_SOURCE_PATH"    env-default:"dictionary_data.xml"`
	DryRun        bool          `yaml:"dry_run"        env:"MIGRATION_DRY_RUN"        env-default:"false"`
	RequireEmpty  bool          `yaml:"require_empty"  env:"MIGRATION_REQUIRE_EMPTY"  env-default:"false"`
	SkipSchema    bool          `yaml:"skip_schema"    env:"MIGRATION_SKIP_SCHEMA"    env-default:"false"`
	ProgressEvery int           `yaml:"progress_every" env:"MIGRATION_PROGRESS_EVERY" env-default:"1000"`
	Timeout       time.Duration `yaml:"timeout"        env:"MIGRATION_TIMEOUT"        env-default:"30m"`
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultEnv = "development"

// Load builds the configuration from, in increasing priority: env-default
// tags, the YAML file, dotenv files in the working directory, and the
// process environment.
//
// Dotenv layering is described at ReadDotenv. The YAML path comes from
// CONFIG_PATH (fallback "./config.yaml"); a missing fallback file is not an
// error. overrides run in order after loading and before Validate.
func Load(overrides ...func(*Config)) (*Config, error) {
	if err := LoadDotenv("."); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	for _, o := range overrides {
		o(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// DotenvFiles returns the dotenv layers for env, lowest priority first.
func DotenvFiles(env string) []string {
	return []string{".env", ".env." + env, ".env.local"}
}

// ReadDotenv reads and merges the dotenv layers found in dir: .env, then
// .env.<APP_ENV>, then .env.local, later files winning on conflict. APP_ENV is
// taken from the process environment, else from .env, else "development".
// Missing files are skipped.
func ReadDotenv(dir string) (map[string]string, error) {
	merged := map[string]string{}

	base, err := readDotenvFile(filepath.Join(dir, ".env"))
	if err != nil {
		return nil, err
	}
	maps.Copy(merged, base)

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = merged["APP_ENV"]
	}
	if env == "" {
		env = defaultEnv
	}

	for _, name := range DotenvFiles(env)[1:] {
		vals, err := readDotenvFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		maps.Copy(merged, vals)
	}
	return merged, nil
}

// LoadDotenv applies ReadDotenv(dir) to the process environment. Variables
// already set in the environment are left untouched.
func LoadDotenv(dir string) error {
	vals, err := ReadDotenv(dir)
	if err != nil {
		return err
	}
	for k, v := range vals {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("dotenv: set %s: %w", k, err)
		}
	}
	return nil
}

func readDotenvFile(path string) (map[string]string, error) {
	vals, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dotenv: read %s: %w", path, err)
	}
	return vals, nil
}

package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every configuration variable
const EnvPrefix = "NDEV_"

// LoadConfiguration reads .env files and the process environment into a
// Configuration. Without explicit files it loads ".env" followed by
// ".env.<GO_ENV>", missing files are skipped. Variables already present
// in the environment always win over file values.
func LoadConfiguration(files ...string) (Configuration, error) {
	environment := envy.Get("GO_ENV", "development")
	if len(files) == 0 {
		files = []string{".env", ".env." + environment}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Configuration{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	return ConfigurationFromEnv()
}

// ConfigurationFromEnv reads the process environment only. Hosts without
// a file system, the browser among them, start from here.
func ConfigurationFromEnv() (Configuration, error) {
	cfg := Configuration{Environment: envy.Get("GO_ENV", "development")}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Configuration{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

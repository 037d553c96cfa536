package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// DBSource is the Postgres connection string for the persistence
	// collaborator. Empty means pure in-memory operation.
	DBSource string
	Port     string
	Env      string
}

func Load() (*Config, error) {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("SERVER_PORT must be numeric, got %q", port)
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &Config{
		DBSource: os.Getenv("DB_SOURCE"),
		Port:     port,
		Env:      env,
	}, nil
}

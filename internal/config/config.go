// Package config handles loading and parsing application configuration.
// Values come from three places, later ones winning:
//  1. A YAML file, located by CONFIG_PATH or the --config flag (optional)
//  2. A .env file in the working directory (optional)
//  3. The process environment
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity: "dev", "staging" or "prod".
	Env string `yaml:"env" env:"ENV" env-default:"dev" validate:"oneof=dev staging prod"`

	HTTPServer HTTPServer `yaml:"http_server"`
	Storage    Storage    `yaml:"storage"`
	JWT        JWT        `yaml:"jwt"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
	CORS       CORS       `yaml:"cors"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Port         string        `yaml:"port"          env:"PORT" env-default:"3000" validate:"required,numeric"`
	ReadTimeout  time.Duration `yaml:"read_timeout"  env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"  env-default:"60s"`
}

// Addr is the listen address derived from Port.
func (h HTTPServer) Addr() string {
	return ":" + h.Port
}

// Storage selects the database backend. DSN is a file path for sqlite
// and a connection URL for postgres.
type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite" validate:"oneof=sqlite postgres"`
	DSN    string `yaml:"dsn"    env:"STORAGE_DSN"    env-default:"school.db" validate:"required"`
}

// JWT configures bearer token signing. There is no default
// secret: the server refuses to start without one.
type JWT struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET" env-required:"true" validate:"required,min=16"`
	TTL    time.Duration `yaml:"ttl"    env:"JWT_TTL"    env-default:"1h"`
}

// RateLimit throttles the credential endpoints per client address.
type RateLimit struct {
	RPS   float64 `yaml:"rps"   env:"RATE_LIMIT_RPS"   env-default:"5"  validate:"gt=0"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"10" validate:"gt=0"`
}

// CORS lists the origins browsers may call the API from.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// Load reads the config from path (skipped when empty) and the
// environment, then validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read environment: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// MustLoad resolves the config path from CONFIG_PATH or --config, loads
// it and exits the process on failure.
func MustLoad() *Config {
	// .env is a convenience for local runs; its absence is not an error.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	return cfg
}

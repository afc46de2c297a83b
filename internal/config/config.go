// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON config
// file and environment variables, applied in that order.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultSecretKey signs session cookies when nothing else is configured.
// Only suitable for development.
const DefaultSecretKey = "planner-dev-secret-change-me"

// Duration is a time.Duration read from strings such as "24h" in both the
// config file and the environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address" env:"SERVER_ADDRESS"`

	// Config is the path to the config file.
	Config string `json:"-"`

	// DataDir holds the JSON document files.
	DataDir string `json:"data_dir" env:"DATA_DIR"`
	// UsersFile and PlannerFile are relative to DataDir.
	UsersFile   string `json:"users_file" env:"USERS_FILE"`
	PlannerFile string `json:"planner_file" env:"PLANNER_FILE"`

	// DatabaseDSN switches document storage to PostgreSQL when set.
	DatabaseDSN string `json:"database_dsn" env:"DATABASE_DSN"`

	// RedisURL switches session storage to Redis when set.
	RedisURL string `json:"redis_url" env:"REDIS_URL"`

	SecretKey     string   `json:"secret_key" env:"SECRET_KEY"`
	SessionTTL    Duration `json:"session_ttl" env:"SESSION_TTL"`
	SecureCookies bool     `json:"secure_cookies" env:"SECURE_COOKIES"`

	// PasswordScheme is "sha256" or "bcrypt".
	PasswordScheme string `json:"password_scheme" env:"PASSWORD_SCHEME"`
	EmailDomain    string `json:"email_domain" env:"EMAIL_DOMAIN"`

	CORSOrigins []string `json:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`

	LogLevel string `json:"log_level" env:"LOG_LEVEL"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert" env:"TLS_CERT"`
	TLSKey  string `json:"tls_key" env:"TLS_KEY"`
}

// Parse parses os.Args and the process environment. It exits on error.
func Parse() *Options {
	opts, err := ParseArgs(os.Args[1:], nil)
	if err != nil {
		log.Fatalf("error while parsing configuration: %v", err)
	}
	return opts
}

// ParseArgs builds Options from args, the config file and environ. A nil
// environ means the process environment.
func ParseArgs(args []string, environ map[string]string) (*Options, error) {
	options := &Options{
		UsersFile:      "users.json",
		PlannerFile:    "planner_data.json",
		SessionTTL:     Duration{24 * time.Hour},
		PasswordScheme: "sha256",
		EmailDomain:    "@clases.edu.sv",
	}

	fset := flag.NewFlagSet("planner", flag.ContinueOnError)
	fset.StringVar(&options.Port, "a", "0.0.0.0:5000", "run on ip:port server")
	fset.StringVar(&options.DataDir, "data", ".", "directory of the JSON data files")
	fset.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fset.StringVar(&options.RedisURL, "r", "", "redis url for sessions")
	fset.StringVar(&options.SecretKey, "k", DefaultSecretKey, "session signing secret")
	fset.StringVar(&options.LogLevel, "l", "info", "log level")
	fset.StringVar(&options.Config, "config", "config.json", "path to config file")
	fset.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	if configPath := lookup(environ, "CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		data, err := os.ReadFile(options.Config)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := env.ParseWithOptions(options, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if options.SessionTTL.Duration <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", options.SessionTTL)
	}
	return options, nil
}

func lookup(environ map[string]string, key string) string {
	if environ == nil {
		return os.Getenv(key)
	}
	return environ[key]
}

// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"
)

// Storage backends selectable with -s / STORAGE_BACKEND.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// StorageBackend selects where the history is kept.
	StorageBackend string `json:"storage_backend"`

	// StoragePath is the JSON file or SQLite database path.
	StoragePath string `json:"storage_path"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `json:"database_dsn"`

	// RedisAddr is the Redis host:port.
	RedisAddr string `json:"redis_addr"`

	// RedisPrefix namespaces history keys in Redis.
	RedisPrefix string `json:"redis_prefix"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// Retention drops saved codes older than this; zero keeps them forever.
	Retention time.Duration `json:"retention"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Load parses args (without the program name) and applies the config file
// and then environment overrides from getenv.
func Load(args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}
	fs := flag.NewFlagSet("qrkeeper", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.StorageBackend, "s", BackendFile, "storage backend: file, sqlite, postgres, redis")
	fs.StringVar(&options.StoragePath, "f", "", "storage file path (file and sqlite backends)")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.RedisAddr, "r", "localhost:6379", "redis address")
	fs.StringVar(&options.RedisPrefix, "redis-prefix", "qrkeeper:", "redis key prefix")
	fs.StringVar(&options.LogLevel, "l", "info", "log level")
	fs.DurationVar(&options.Retention, "retention", 0, "drop saved codes older than this (0 keeps them)")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "TLS certificate file")
	fs.StringVar(&options.TLSKey, "tls-key", "", "TLS key file")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		data, err := os.ReadFile(options.Config)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error while reading config file: %w", err)
		default:
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	overrides := map[string]*string{
		"SERVER_ADDRESS":  &options.Port,
		"STORAGE_BACKEND": &options.StorageBackend,
		"STORAGE_PATH":    &options.StoragePath,
		"DATABASE_DSN":    &options.DatabaseDSN,
		"REDIS_ADDR":      &options.RedisAddr,
		"LOG_LEVEL":       &options.LogLevel,
	}
	for env, field := range overrides {
		if v := getenv(env); v != "" {
			*field = v
		}
	}

	switch options.StorageBackend {
	case BackendFile, BackendSQLite, BackendPostgres, BackendRedis:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", options.StorageBackend)
	}
	if options.Retention < 0 {
		return nil, errors.New("retention must not be negative")
	}
	if options.StorageBackend == BackendPostgres && options.DatabaseDSN == "" {
		return nil, errors.New("postgres backend requires a database DSN")
	}

	return options, nil
}

// Parse parses the process's command-line flags and environment variables.
// It exits on invalid configuration.
func Parse() *Options {
	options, err := Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return options
}

// Package config provides runtime configuration values for the storefront.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends accepted in STORAGE_BACKEND.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds configuration knobs for the HTTP server, catalog client,
// cart persistence and the refresh subscriber.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string

	CatalogBaseURL string
	CatalogTimeout time.Duration

	StorageBackend string
	StorageDir     string
	DatabaseURL    string
	CartStorageKey string
	PersistTimeout time.Duration

	NATSURL       string
	STANClusterID string
	STANClientID  string
	STANSubject   string
	STANDurable   string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	backend := strings.ToLower(getenv("STORAGE_BACKEND", BackendFile))
	switch backend {
	case BackendFile, BackendMemory, BackendPostgres:
	default:
		backend = BackendFile
	}
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 10),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		CatalogBaseURL:  strings.TrimRight(getenv("CATALOG_BASE_URL", "https://fakestoreapi.com"), "/"),
		CatalogTimeout:  durenvms("CATALOG_TIMEOUT_MS", 0),
		StorageBackend:  backend,
		StorageDir:      getenv("STORAGE_DIR", ".storefront"),
		DatabaseURL:     getenv("DATABASE_URL", ""),
		CartStorageKey:  getenv("CART_STORAGE_KEY", "cartState"),
		PersistTimeout:  durenvms("PERSIST_TIMEOUT_MS", 2000),
		NATSURL:         getenv("NATS_URL", "nats://localhost:4223"),
		STANClusterID:   getenv("STAN_CLUSTER_ID", "storefront-cluster"),
		STANClientID:    getenv("STAN_CLIENT_ID", ""),
		STANSubject:     getenv("STAN_SUBJECT", ""),
		STANDurable:     getenv("STAN_DURABLE", "storefront-catalog"),
	}
}

package config

import (
	"testing"
	"time"
)

var allKeys = []string{
	"HTTP_ADDR", "SHUTDOWN_TIMEOUT", "LOG_LEVEL",
	"CATALOG_BASE_URL", "CATALOG_TIMEOUT_MS",
	"STORAGE_BACKEND", "STORAGE_DIR", "DATABASE_URL", "CART_STORAGE_KEY", "PERSIST_TIMEOUT_MS",
	"NATS_URL", "STAN_CLUSTER_ID", "STAN_CLIENT_ID", "STAN_SUBJECT", "STAN_DURABLE",
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
	c := Load()
	if c.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr default")
	}
	if c.ShutdownTimeout != 10*time.Second {
		t.Fatalf("ShutdownTimeout default")
	}
	if c.CatalogBaseURL != "https://fakestoreapi.com" || c.CatalogTimeout != 0 {
		t.Fatalf("catalog defaults: %+v", c)
	}
	if c.StorageBackend != BackendFile || c.StorageDir != ".storefront" {
		t.Fatalf("storage defaults: %+v", c)
	}
	if c.CartStorageKey != "cartState" || c.PersistTimeout != 2*time.Second {
		t.Fatalf("persistence defaults: %+v", c)
	}
	if c.STANSubject != "" {
		t.Fatalf("subscriber must be disabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "2")
	t.Setenv("CATALOG_BASE_URL", "http://catalog.local/")
	t.Setenv("CATALOG_TIMEOUT_MS", "1500")
	t.Setenv("STORAGE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("CART_STORAGE_KEY", "cart-v2")
	t.Setenv("PERSIST_TIMEOUT_MS", "250")
	t.Setenv("STAN_SUBJECT", "catalog.refresh")
	c := Load()
	if c.HTTPAddr != ":9090" || c.ShutdownTimeout != 2*time.Second {
		t.Fatalf("server env: %+v", c)
	}
	if c.CatalogBaseURL != "http://catalog.local" {
		t.Fatalf("trailing slash not trimmed: %q", c.CatalogBaseURL)
	}
	if c.CatalogTimeout != 1500*time.Millisecond {
		t.Fatalf("CatalogTimeout env")
	}
	if c.StorageBackend != BackendPostgres || c.DatabaseURL == "" {
		t.Fatalf("storage env: %+v", c)
	}
	if c.CartStorageKey != "cart-v2" || c.PersistTimeout != 250*time.Millisecond {
		t.Fatalf("persistence env: %+v", c)
	}
	if c.STANSubject != "catalog.refresh" {
		t.Fatalf("STANSubject env")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("STORAGE_BACKEND", "s3")
	c := Load()
	if c.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected default timeout on bad value")
	}
	if c.StorageBackend != BackendFile {
		t.Fatalf("expected file backend on unknown value, got %q", c.StorageBackend)
	}
}

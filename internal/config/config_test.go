package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("BLOB_BACKEND", BlobBackendMemory)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, SequenceBackendPostgres, cfg.SequenceBackend)
	assert.Equal(t, 3*365*24*time.Hour, cfg.WarrantyCoverage)
	assert.Equal(t, 7*24*time.Hour, cfg.SignedURLTTL)
	assert.True(t, cfg.ZeroCostOnMissingReference)
	assert.Equal(t, 5, cfg.LedgerMaxRetries)
	assert.Equal(t, 5, cfg.InvoiceDueDays)
	assert.Equal(t, "21", cfg.ShippingRate().String())
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("BLOB_BACKEND", BlobBackendMemory)
	t.Setenv("SEQUENCE_BACKEND", SequenceBackendRedis)
	t.Setenv("WARRANTY_COVERAGE", "24h")
	t.Setenv("ZERO_COST_ON_MISSING_REFERENCE", "false")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, SequenceBackendRedis, cfg.SequenceBackend)
	assert.Equal(t, 24*time.Hour, cfg.WarrantyCoverage)
	assert.False(t, cfg.ZeroCostOnMissingReference)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown sequence backend", map[string]string{"BLOB_BACKEND": "memory", "SEQUENCE_BACKEND": "etcd"}},
		{"gcs without bucket", map[string]string{"BLOB_BACKEND": "gcs"}},
		{"production without jwt secret", map[string]string{"BLOB_BACKEND": "memory", "APP_ENV": "production"}},
		{"zero retries", map[string]string{"BLOB_BACKEND": "memory", "LEDGER_MAX_RETRIES": "0"}},
		{"bad shipping rate", map[string]string{"BLOB_BACKEND": "memory", "SHIPPING_TAX_RATE": "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"AZURE_TRANSLATOR_ENDPOINT", "BATCH_SIZE", "REQUEST_TIMEOUT", "TARGET_LANGUAGE", "ACTIONSCRIPT_MODE"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	assert.Equal(t, DefaultAzureEndpoint, cfg.AzureEndpoint)
	assert.Equal(t, "ja", cfg.SourceLanguage)
	assert.Equal(t, "en", cfg.TargetLanguage)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "heuristic", cfg.ActionScriptMode)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("AZURE_TRANSLATOR_KEY", "secret")
	t.Setenv("BATCH_SIZE", "25")
	t.Setenv("REQUEST_TIMEOUT", "5")
	t.Setenv("REQUESTS_PER_SECOND", "0.5")
	t.Setenv("MAX_BATCH_CHARS", "oops")
	t.Setenv("ASSET_ENCODING", "shift_jis")

	cfg := FromEnv()
	assert.Equal(t, "secret", cfg.AzureKey)
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0.5, cfg.RequestsPerSecond)
	assert.Equal(t, 10000, cfg.MaxBatchChars)
	assert.Equal(t, "shift_jis", cfg.AssetEncoding)
}

func TestValidate(t *testing.T) {
	cfg := FromEnv()
	cfg.BatchSize = 0
	assert.Error(t, cfg.Validate())

	cfg = FromEnv()
	cfg.RequestTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = FromEnv()
	cfg.RequestsPerSecond = -1
	assert.Error(t, cfg.Validate())
}

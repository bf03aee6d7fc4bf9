package app

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "session-secret")
	t.Setenv("CSRF_SECRET", "csrf-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 10, cfg.CatalogPageSize)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.DueReminderDays)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("CATALOG_PAGE_SIZE", "25")
	t.Setenv("JOBS_DUE_REMINDER_DAYS", "7")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 25, cfg.CatalogPageSize)
	assert.Equal(t, 7, cfg.DueReminderDays)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"empty session secret": {"SESSION_SECRET": ""},
		"empty csrf secret":    {"CSRF_SECRET": ""},
		"zero page size":       {"CATALOG_PAGE_SIZE": "0"},
		"negative days":        {"JOBS_DUE_REMINDER_DAYS": "-1"},
		"bad duration":         {"SESSION_TTL": "forever"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestIsProductionNilSafe(t *testing.T) {
	var cfg *Config
	assert.False(t, cfg.IsProduction())
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{AppEnv: "production", LogFormat: "json"}, &buf)
	logger.Info("hello", "component", "test")
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "test", entry["component"])

	buf.Reset()
	logger = newLogger(&Config{AppEnv: "development", LogFormat: "pretty"}, &buf)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}

func TestTestModeRefresh(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.Reaper.Threshold())
	assert.Equal(t, time.Hour, cfg.Reaper.Interval)
	assert.Equal(t, "none", cfg.Broker.Kind)
}

func TestDiagnosticModeForcedOffInProduction(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("CALLBACK_DIAGNOSTIC_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.Callback.DiagnosticMode)
}

func TestDiagnosticModeAllowedOutsideProduction(t *testing.T) {
	t.Setenv("GO_ENV", "development")
	t.Setenv("CALLBACK_DIAGNOSTIC_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Callback.DiagnosticMode)
}

func TestLoadRejectsNonPositiveThreshold(t *testing.T) {
	t.Setenv("REAPER_THRESHOLD_HOURS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsDefaultJwtSecretInProduction(t *testing.T) {
	t.Setenv("GO_ENV", "production")

	for _, secret := range []string{DefaultJwtSecret, ""} {
		t.Setenv("JWT_SECRET", secret)
		_, err := Load()
		assert.Error(t, err, "secret %q", secret)
	}
}

func TestLoadAllowsDefaultJwtSecretOutsideProduction(t *testing.T) {
	t.Setenv("GO_ENV", "development")
	t.Setenv("JWT_SECRET", DefaultJwtSecret)

	_, err := Load()
	assert.NoError(t, err)
}

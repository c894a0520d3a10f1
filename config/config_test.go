package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("MEASURE_MODE", "")
	t.Setenv("FREE_LETTER_LIMIT", "")
	t.Setenv("PAGE_PADDING_PX", "")

	cfg := Load()

	assert.Equal(t, MeasureModeMetrics, cfg.MeasureMode)
	assert.Equal(t, 1, cfg.FreeLetterLimit)
	assert.Equal(t, 794.0, cfg.PageWidthPx)
	assert.Equal(t, 1123.0, cfg.PageHeightPx)
	assert.Equal(t, 80.0, cfg.PagePaddingPx)
	assert.NotEmpty(t, cfg.SessionSecret, "development should get a generated secret")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("MEASURE_MODE", "BROWSER")
	t.Setenv("FREE_LETTER_LIMIT", "5")
	t.Setenv("PAGE_PADDING_PX", "48")

	cfg := Load()

	assert.Equal(t, MeasureModeBrowser, cfg.MeasureMode)
	assert.Equal(t, 5, cfg.FreeLetterLimit)
	assert.Equal(t, 48.0, cfg.PagePaddingPx)
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("MEASURE_MODE", "guess")
	t.Setenv("FREE_LETTER_LIMIT", "lots")
	t.Setenv("PAGE_HEIGHT_PX", "tall")

	cfg := Load()

	assert.Equal(t, MeasureModeMetrics, cfg.MeasureMode)
	assert.Equal(t, 1, cfg.FreeLetterLimit)
	assert.Equal(t, 1123.0, cfg.PageHeightPx)
}

func TestGenerateSecureSecret(t *testing.T) {
	a := GenerateSecureSecret()
	b := GenerateSecureSecret()
	assert.GreaterOrEqual(t, len(a), MinSessionSecretLength)
	assert.NotEqual(t, a, b)
}

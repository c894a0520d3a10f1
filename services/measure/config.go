package measure

import (
	"log"

	"letterhead/config"
	"letterhead/services/pagination"
)

// DefaultCacheSize bounds the heights kept by FromConfig's cache
const DefaultCacheSize = 2048

// FromConfig returns the cached measurer selected by MEASURE_MODE
func FromConfig(cfg *config.Config) *CachedMeasurer {
	var inner pagination.Measurer = NewMetricsMeasurer()
	if cfg.MeasureMode == config.MeasureModeBrowser {
		inner = NewBrowserMeasurer(cfg.ChromePath)
	}
	log.Printf("[INFO] Measuring block heights with the %s measurer", modeName(cfg.MeasureMode))
	return NewCachedMeasurer(inner, DefaultCacheSize)
}

// GeometryFromConfig returns the configured page geometry, validated
func GeometryFromConfig(cfg *config.Config) (pagination.PageGeometry, error) {
	g := pagination.PageGeometry{
		PageWidthPx:  cfg.PageWidthPx,
		PageHeightPx: cfg.PageHeightPx,
		PaddingPx:    cfg.PagePaddingPx,
	}
	return g, g.Validate()
}

func modeName(mode string) string {
	if mode == config.MeasureModeBrowser {
		return config.MeasureModeBrowser
	}
	return config.MeasureModeMetrics
}

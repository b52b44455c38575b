package module

import (
	"reviewpipe/internal/platform/config"
	"reviewpipe/internal/services/analyze/service"
)

// FromConfig extracts the analyze service config from the EDA_ namespace
func FromConfig(cfg config.Conf) service.Config {
	e := cfg.Prefix("EDA_")
	return service.Config{
		OutputDir:    e.MayString("OUTPUT_DIR", "eda"),
		RatingColumn: e.MayString("RATING_COLUMN", "rating"),
		TopTerms:     e.MayInt("TOP_TERMS", 30),
	}
}

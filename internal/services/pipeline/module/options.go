package module

import (
	"reviewpipe/internal/platform/config"
	"reviewpipe/internal/services/pipeline/service"
)

// FromConfig extracts the pipeline config from the PIPELINE_ namespace
func FromConfig(cfg config.Conf) service.Config {
	p := cfg.Prefix("PIPELINE_")
	return service.Config{
		TextColumn:       p.MayString("TEXT_COLUMN", "review_text"),
		LabelColumn:      p.MayString("LABEL_COLUMN", "sentiment"),
		DateColumn:       p.MayString("DATE_COLUMN", "review_date"),
		SnapshotDir:      p.MayString("SNAPSHOT_DIR", ""),
		ContinueOnError:  p.MayBool("CONTINUE_ON_ERROR", false),
		IncludeAPI:       p.MayBool("INCLUDE_API", false),
		PredictionCharts: p.MayBool("PREDICTION_CHARTS", false),
	}
}

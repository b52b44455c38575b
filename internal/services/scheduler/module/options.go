package module

import (
	"reviewpipe/internal/platform/config"
	"reviewpipe/internal/services/scheduler/service"
)

// FromConfig extracts the scheduler config from the SCHEDULER_ namespace.
// SCHEDULER_RUN_AT is HH:MM local time
func FromConfig(cfg config.Conf) service.Config {
	s := cfg.Prefix("SCHEDULER_")
	h, m := s.MayClock("RUN_AT", "02:00")
	return service.Config{
		Hour:         h,
		Minute:       m,
		Poll:         s.MayDuration("POLL", 0),
		Table:        s.MayString("TABLE", "customer_reviews"),
		DateColumn:   s.MayString("DATE_COLUMN", "review_date"),
		LookbackDays: s.MayInt("LOOKBACK_DAYS", 7),
	}
}

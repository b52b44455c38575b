package time

import (
	"testing"
	"time"
)

func TestNextDaily(t *testing.T) {
	loc := time.FixedZone("X", 2*3600)
	at := func(d, h, m, s int) time.Time { return time.Date(2026, 10, d, h, m, s, 0, loc) }

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before today's slot", at(15, 1, 59, 59), at(15, 2, 0, 0)},
		{"exactly at slot", at(15, 2, 0, 0), at(16, 2, 0, 0)},
		{"after slot", at(15, 13, 0, 0), at(16, 2, 0, 0)},
		{"month rollover", time.Date(2026, 10, 31, 23, 0, 0, 0, loc), time.Date(2026, 11, 1, 2, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextDaily(tc.now, 2, 0); !got.Equal(tc.want) {
				t.Fatalf("NextDaily(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestDaysBefore(t *testing.T) {
	now := time.Date(2026, 10, 15, 2, 0, 30, 0, time.UTC)
	if got := DaysBefore(now, 7); !got.Equal(time.Date(2026, 10, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("DaysBefore = %v", got)
	}
	if got := StartOfDay(now); got.Hour() != 0 || got.Day() != 15 {
		t.Fatalf("StartOfDay = %v", got)
	}
}

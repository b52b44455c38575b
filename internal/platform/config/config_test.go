package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	kit "reviewpipe/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	tr := New().Prefix("TRAIN_")
	if got := tr.key("SEED"); got != "TRAIN_SEED" {
		t.Fatalf("key() = %q, want %q", got, "TRAIN_SEED")
	}
	nested := tr.Prefix("LR_")
	if got := nested.key("C"); got != "TRAIN_LR_C" {
		t.Fatalf("nested key() = %q, want %q", got, "TRAIN_LR_C")
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  reviewpipe ")
	if got := c.MustString("NAME"); got != "reviewpipe" {
		t.Fatalf("MustString = %q, want %q", got, "reviewpipe")
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustInt(t *testing.T) {
	c := New().Prefix("SVC_")
	t.Setenv("SVC_WORKERS", "  8 ")
	if got := c.MustInt("WORKERS"); got != 8 {
		t.Fatalf("MustInt = %d, want %d", got, 8)
	}
	kit.MustPanic(t, func() { _ = c.MustInt("MISSING") })
	t.Setenv("SVC_BAD", "x")
	kit.MustPanic(t, func() { _ = c.MustInt("BAD") })
}

func TestMustDurationURLPort(t *testing.T) {
	c := New().Prefix("M_")
	t.Setenv("M_TIMEOUT", " 250ms ")
	if got := c.MustDuration("TIMEOUT"); got != 250*time.Millisecond {
		t.Fatalf("MustDuration = %v", got)
	}
	t.Setenv("M_DBAD", "nope")
	kit.MustPanic(t, func() { _ = c.MustDuration("DBAD") })

	t.Setenv("M_URL", "https://reviews.example.com/v1/reviews")
	if u := c.MustURL("URL"); !u.IsAbs() {
		t.Fatal("MustURL returned non-absolute URL")
	}
	t.Setenv("M_REL", "/relative")
	kit.MustPanic(t, func() { _ = c.MustURL("REL") })

	t.Setenv("M_PORT", "4000")
	if got := c.MustPort("PORT"); got != ":4000" {
		t.Fatalf("MustPort = %q", got)
	}
	t.Setenv("M_OOB", "70000")
	kit.MustPanic(t, func() { _ = c.MustPort("OOB") })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("REQ_")
	t.Setenv("REQ_A", "x")
	t.Setenv("REQ_B", "  ")
	c.Require("A")
	kit.MustPanic(t, func() { c.Require("A", "B") })
}

func TestMayFallbacks(t *testing.T) {
	c := New().Prefix("MAY_")
	t.Setenv("MAY_INT", " 7 ")
	t.Setenv("MAY_INT_BAD", "x")
	t.Setenv("MAY_U", "42")
	t.Setenv("MAY_U_BAD", "-1")
	t.Setenv("MAY_F", "0.25")
	t.Setenv("MAY_F_BAD", "quarter")
	t.Setenv("MAY_B", "true")
	t.Setenv("MAY_B_BAD", "nope")
	t.Setenv("MAY_D", "150ms")
	t.Setenv("MAY_D_BAD", "soon")

	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString default = %q", got)
	}
	if got := c.MayInt("INT", 0); got != 7 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayInt("INT_BAD", 3); got != 3 {
		t.Fatalf("MayInt bad = %d", got)
	}
	if got := c.MayUint64("U", 0); got != 42 {
		t.Fatalf("MayUint64 = %d", got)
	}
	if got := c.MayUint64("U_BAD", 9); got != 9 {
		t.Fatalf("MayUint64 bad = %d", got)
	}
	if got := c.MayFloat64("F", 0); got != 0.25 {
		t.Fatalf("MayFloat64 = %v", got)
	}
	if got := c.MayFloat64("F_BAD", 0.2); got != 0.2 {
		t.Fatalf("MayFloat64 bad = %v", got)
	}
	if !c.MayBool("B", false) || c.MayBool("B_BAD", false) {
		t.Fatal("MayBool mismatch")
	}
	if got := c.MayDuration("D", time.Second); got != 150*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayDuration("D_BAD", time.Minute); got != time.Minute {
		t.Fatalf("MayDuration bad = %v", got)
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CSV_")
	def := []string{"a", "b"}
	if got := c.MayCSV("MISS", def); len(got) != 2 {
		t.Fatalf("MayCSV default mismatch: %#v", got)
	}
	t.Setenv("CSV_VALS", " one, two , ,three ,, ")
	got := c.MayCSV("VALS", nil)
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("MayCSV = %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MayCSV[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")
	if got := c.MayEnum("MISS", "pg", "pg", "sqlite"); got != "pg" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("E_DRV", "SQLite")
	if got := c.MayEnum("DRV", "pg", "pg", "sqlite"); got != "sqlite" {
		t.Fatalf("MayEnum normalized = %q", got)
	}
	t.Setenv("E_BAD", "oracle")
	kit.MustPanic(t, func() { _ = c.MayEnum("BAD", "pg", "pg", "sqlite") })
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		h, m   int
		wantOK bool
	}{
		{"02:00", 2, 0, true},
		{" 23:59 ", 23, 59, true},
		{"0:05", 0, 5, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"12:5", 0, 0, false},
		{"noon", 0, 0, false},
	}
	for _, tc := range cases {
		h, m, ok := ParseClock(tc.in)
		if ok != tc.wantOK || (ok && (h != tc.h || m != tc.m)) {
			t.Fatalf("ParseClock(%q) = %d,%d,%v want %d,%d,%v", tc.in, h, m, ok, tc.h, tc.m, tc.wantOK)
		}
	}

	c := New().Prefix("SCHED_")
	if h, m := c.MayClock("RUN_AT", "02:00"); h != 2 || m != 0 {
		t.Fatalf("MayClock default = %d:%d", h, m)
	}
	t.Setenv("SCHED_BAD", "25:99")
	kit.MustPanic(t, func() { _, _ = c.MayClock("BAD", "02:00") })
}

func TestLoad_FileOverlay(t *testing.T) {
	p := filepath.Join(t.TempDir(), "reviewpipe.yaml")
	doc := "train:\n  test_size: 0.3\n  seed: 7\nscheduler:\n  run_at: \"03:30\"\n"
	if err := os.WriteFile(p, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TRAIN_SEED", "42")

	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tr := c.Prefix("TRAIN_")
	if got := tr.MayFloat64("TEST_SIZE", 0.2); got != 0.3 {
		t.Fatalf("file value = %v, want 0.3", got)
	}
	if got := tr.MayInt("SEED", 0); got != 42 {
		t.Fatalf("env should win over file, got %d", got)
	}
	if h, m := c.Prefix("SCHEDULER_").MayClock("RUN_AT", "02:00"); h != 3 || m != 30 {
		t.Fatalf("clock from file = %d:%d", h, m)
	}
}

func TestLoad_FallsBackToConfigFileEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(p, []byte("eda:\n  top_terms: 12\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", p)
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := c.Prefix("EDA_").MayInt("TOP_TERMS", 30); got != 12 {
		t.Fatalf("TOP_TERMS = %d, want 12", got)
	}

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(""); err == nil {
		t.Fatal("missing CONFIG_FILE should error")
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"reviewpipe/internal/platform/testkit"
)

func TestRun_MissingInputLogsAndFails(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "clean.log")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LOG_FILE", logPath)
	t.Setenv("LOG_FORMAT", "json")

	code := run([]string{"-in", filepath.Join(dir, "missing.csv"), "-out", filepath.Join(dir, "out.csv")})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	testkit.MustContain(t, string(b), "load raw data")
	if _, err := os.Stat(filepath.Join(dir, "out.csv")); !os.IsNotExist(err) {
		t.Fatalf("no output expected on failure, stat err = %v", err)
	}
}

func TestRun_BadFlag(t *testing.T) {
	if code := run([]string{"-nope"}); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

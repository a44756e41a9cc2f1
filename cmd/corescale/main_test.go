package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/weiihann/corescale/hostinfo"
)

func newTestRoot(out io.Writer) (*slog.LevelVar, func(args ...string) error) {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return level, func(args ...string) error {
		root := newRootCmd(logger, level, out)
		root.SetArgs(args)

		return root.Execute()
	}
}

func TestInfoCommand(t *testing.T) {
	var buf bytes.Buffer

	_, run := newTestRoot(&buf)
	if err := run("info"); err != nil {
		t.Fatalf("info failed: %v", err)
	}

	if !strings.Contains(buf.String(), "## Host") {
		t.Errorf("expected host header, got:\n%s", buf.String())
	}
}

func TestInfoCommandJSON(t *testing.T) {
	var buf bytes.Buffer

	_, run := newTestRoot(&buf)
	if err := run("info", "--json"); err != nil {
		t.Fatalf("info --json failed: %v", err)
	}

	var info hostinfo.Info
	if err := json.Unmarshal(buf.Bytes(), &info); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if info.Threads < 1 {
		t.Errorf("threads = %d, want >= 1", info.Threads)
	}
}

func TestVerboseRaisesLogLevel(t *testing.T) {
	level, run := newTestRoot(io.Discard)
	if err := run("info", "-v"); err != nil {
		t.Fatalf("info -v failed: %v", err)
	}

	if level.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", level.Level())
	}
}

func TestRejectsArguments(t *testing.T) {
	_, run := newTestRoot(io.Discard)
	if err := run("compute", "extra"); err == nil {
		t.Error("expected error for positional argument")
	}
}

func TestSweepThreads(t *testing.T) {
	info := hostinfo.Info{Threads: 16}

	tests := []struct {
		max  int
		want int
	}{
		{0, 16},
		{-3, 16},
		{4, 4},
		{32, 32},
	}

	for _, tt := range tests {
		got := sweepThreads(info, &globalFlags{maxThreads: tt.max})
		if got != tt.want {
			t.Errorf("sweepThreads(max=%d) = %d, want %d", tt.max, got, tt.want)
		}
	}
}

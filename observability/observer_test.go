package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Arbazxkr/SwarmX-sub000/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  slog.Level
	}{
		{name: "verbose maps to Debug", level: observability.LevelVerbose, want: slog.LevelDebug},
		{name: "info maps to Info", level: observability.LevelInfo, want: slog.LevelInfo},
		{name: "warning maps to Warn", level: observability.LevelWarning, want: slog.LevelWarn},
		{name: "error maps to Error", level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.want {
				t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestSlogObserver_EmitsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := observability.NewSlogObserver(logger)

	obs.OnEvent(context.Background(), observability.Event{
		Type:      "workflow.start",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "workflow.Orchestrator",
		Data:      map[string]any{"run_id": "r-1"},
	})

	out := buf.String()
	if !strings.Contains(out, "workflow.start") {
		t.Errorf("log output missing event type: %q", out)
	}
	if !strings.Contains(out, "run_id=r-1") {
		t.Errorf("log output missing data attribute: %q", out)
	}
	if !strings.Contains(out, "source=workflow.Orchestrator") {
		t.Errorf("log output missing source attribute: %q", out)
	}
}

func TestMultiObserver_FansOut(t *testing.T) {
	var first, second []observability.Event
	a := observerFunc(func(e observability.Event) { first = append(first, e) })
	b := observerFunc(func(e observability.Event) { second = append(second, e) })

	multi := observability.NewMultiObserver(a, nil, b)
	multi.OnEvent(context.Background(), observability.Event{Type: "x"})

	if len(first) != 1 || len(second) != 1 {
		t.Errorf("fan-out counts = %d, %d, want 1, 1", len(first), len(second))
	}
}

func TestGetObserver(t *testing.T) {
	if _, err := observability.GetObserver("noop"); err != nil {
		t.Errorf("GetObserver(noop) error = %v", err)
	}
	if _, err := observability.GetObserver("slog"); err != nil {
		t.Errorf("GetObserver(slog) error = %v", err)
	}
	if _, err := observability.GetObserver("does-not-exist"); err == nil {
		t.Error("GetObserver() should fail for unknown observer")
	}
}

func TestRegisterObserver(t *testing.T) {
	custom := observerFunc(func(observability.Event) {})
	observability.RegisterObserver("custom-test", custom)

	got, err := observability.GetObserver("custom-test")
	if err != nil {
		t.Fatalf("GetObserver() error = %v", err)
	}
	if got == nil {
		t.Error("GetObserver() returned nil observer")
	}
}

type observerFunc func(observability.Event)

func (f observerFunc) OnEvent(ctx context.Context, event observability.Event) { f(event) }

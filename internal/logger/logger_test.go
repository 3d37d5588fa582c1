package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	charmlog "github.com/charmbracelet/log"

	"github.com/arkilian/sqltypes/internal/config"
)

func TestLevel(t *testing.T) {
	tests := map[string]charmlog.Level{
		"debug": charmlog.DebugLevel,
		"info":  charmlog.InfoLevel,
		"warn":  charmlog.WarnLevel,
		"error": charmlog.ErrorLevel,
		"WARN":  charmlog.WarnLevel,
		"fatal": charmlog.FatalLevel,
		"trace": charmlog.InfoLevel,
		"":      charmlog.InfoLevel,
	}
	for name, want := range tests {
		if got := Level(name); got != want {
			t.Errorf("%q: expected %v, got %v", name, want, got)
		}
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.LogConfig{Level: "warn"}, &buf)
	l.Info("hidden")
	l.Warn("shown", "backend", "sqlite")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "backend=sqlite") {
		t.Errorf("expected warning with fields, got %q", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.LogConfig{Level: "info", JSON: true}, &buf)
	l.Info("round trip", "samples", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "round trip" || entry["samples"] != float64(3) {
		t.Errorf("unexpected entry %v", entry)
	}
}

package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCriticalLevelName(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Level: slog.LevelInfo, Format: FormatJSON})

	log.Critical("app: init failed", "component", "db")

	out := buf.String()
	if !strings.Contains(out, `"level":"CRITICAL"`) {
		t.Fatalf("expected CRITICAL level, got %s", out)
	}
	if !strings.Contains(out, `"component":"db"`) {
		t.Fatalf("expected attrs to be kept, got %s", out)
	}
}

func TestBusinessErrorSkipsNil(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Level: slog.LevelDebug, Format: FormatText})

	log.BusinessError("goals.contribute: rejected", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output for nil error, got %q", buf.String())
	}

	log.BusinessError("goals.contribute: rejected", errors.New("not a participant"), "goal_id", "g-1")
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "not a participant") {
		t.Fatalf("expected warn with err attr, got %q", out)
	}
}

func TestParseLevelDevelopmentDefaultsToDebug(t *testing.T) {
	if got := parseLevel("", "development"); got != slog.LevelDebug {
		t.Fatalf("expected debug, got %v", got)
	}
	if got := parseLevel("", "production"); got != slog.LevelInfo {
		t.Fatalf("expected info, got %v", got)
	}
	if got := parseLevel("fatal", "production"); got != LevelCritical {
		t.Fatalf("expected critical, got %v", got)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]string{
		"":        "json",
		"TEXT":    "text",
		" pretty": "pretty",
		"xml":     "json",
	}
	for input, want := range cases {
		if got := parseFormat(input); got != want {
			t.Fatalf("parseFormat(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestPrettyFormatWrites(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Level: slog.LevelInfo, Format: FormatPretty})
	log.Info("http: listening", "addr", ":8080")
	if !strings.Contains(buf.String(), "http: listening") {
		t.Fatalf("expected message in output, got %q", buf.String())
	}
}

func TestNamedAddsComponentAndService(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Level: slog.LevelInfo, Format: FormatJSON, Service: "family-finance"}).Named("budget")

	log.Info("budget: threshold crossed", "user_id", "u-1")

	out := buf.String()
	for _, want := range []string{`"service":"family-finance"`, `"component":"budget"`, `"user_id":"u-1"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}

func TestDebugFilteredAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Level: slog.LevelInfo, Format: FormatText})
	log.Debug("noise")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be dropped, got %q", buf.String())
	}
}

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_DefaultLevelHidesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{})

	logger.Debug("hidden")
	logger.Warn("shown", "id", "t1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "id=t1") {
		t.Errorf("expected warning with fields, got %q", out)
	}
	if !strings.Contains(out, Prefix) {
		t.Errorf("expected prefix %q in %q", Prefix, out)
	}
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Debug: true})

	logger.Debug("subscribing")

	if !strings.Contains(buf.String(), "subscribing") {
		t.Errorf("expected debug output, got %q", buf.String())
	}
}

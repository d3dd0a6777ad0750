package logx

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "debug")
	if err != nil {
		t.Fatal(err)
	}

	log.Debug().Int("depth", 3).Msg("iteration done")
	out := buf.String()
	for _, want := range []string{"iteration done", "depth=3", "logx_test.go"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "warn")
	if err != nil {
		t.Fatal(err)
	}
	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info line written at warn level: %q", buf.String())
	}

	if _, err := NewLogger(&buf, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

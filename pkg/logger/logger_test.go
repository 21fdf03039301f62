package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Output: &buf, Service: "voyage-api"})

	log.Debug().Msg("hidden")
	log.Info().Str("path", "/api/yachts").Msg("request")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "request" || entry["path"] != "/api/yachts" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry["service"] != "voyage-api" {
		t.Fatalf("service field missing: %+v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Fatalf("timestamp missing: %+v", entry)
	}
}

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/linuxmatters/rhythmimick/internal/pattern"
	"github.com/linuxmatters/rhythmimick/internal/store"
)

func TestProcessorConfig(t *testing.T) {
	g := &Globals{Bars: 2, BPM: 96, MaxSeconds: 30, Mains: 60}
	cfg := g.processorConfig()

	if cfg.Bars != 2 || cfg.BPM != 96 {
		t.Errorf("grid = %d bars @ %d, want 2 @ 96", cfg.Bars, cfg.BPM)
	}
	if cfg.MaxCaptureSeconds != 30 {
		t.Errorf("MaxCaptureSeconds = %v, want 30", cfg.MaxCaptureSeconds)
	}
	if cfg.MainsFrequency != 60 {
		t.Errorf("MainsFrequency = %d, want 60", cfg.MainsFrequency)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("SampleRate = %v, want default 44100", cfg.SampleRate)
	}
}

func TestOpenStoreDisabled(t *testing.T) {
	g := &Globals{NoHistory: true}
	st, err := g.openStore()
	if err != nil || st != nil {
		t.Errorf("openStore() = %v, %v; want nil, nil", st, err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"groove.wav", 24, "groove.wav"},
		{"abcdef", 6, "abcdef"},
		{"abcdefg", 6, "abcde…"},
		{"ドラムループ", 4, "ドラム…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestWriteTakeJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.json")
	take := &store.Take{
		ID:        "0123456789",
		Name:      "groove.wav",
		Source:    "file",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Bars:      1,
		BPM:       120,
		Pattern: pattern.Pattern{
			{Row: pattern.RowKick, StartTick: 0, LengthTicks: 12, Velocity: 115},
			{Row: pattern.RowSnare, StartTick: 96, LengthTicks: 12, Velocity: 108},
		},
	}
	if err := writeTakeJSON(path, take); err != nil {
		t.Fatalf("writeTakeJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got exportedTake
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.ID != take.ID || got.BPM != 120 || len(got.Notes) != 2 {
		t.Fatalf("decoded %+v", got)
	}
	if got.Notes[1] != take.Pattern[1] {
		t.Errorf("note 1 = %+v, want %+v", got.Notes[1], take.Pattern[1])
	}
}

func TestWriteTakeJSONEmptyPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := writeTakeJSON(path, &store.Take{ID: "x"}); err != nil {
		t.Fatalf("writeTakeJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["notes"]) != "[]" {
		t.Errorf("notes = %s, want []", raw["notes"])
	}
}

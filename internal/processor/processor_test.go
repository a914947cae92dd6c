package processor

import (
	"path/filepath"
	"testing"

	"github.com/linuxmatters/rhythmimick/internal/pattern"
)

// TestProcessFile tests the complete two-pass file pipeline
func TestProcessFile(t *testing.T) {
	path := writeTestWAV(t, fourBeats(), 44100)

	type update struct {
		pass     int
		name     string
		progress float64
		result   *Result
	}
	var updates []update

	result, err := ProcessFile(path, newTestConfig(), func(pass int, passName string, progress float64, level float64, r *Result) {
		updates = append(updates, update{pass, passName, progress, r})
	})
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if got := result.Pattern.CountRow(pattern.RowKick); got != 4 {
		t.Fatalf("kicks = %d, want 4", got)
	}
	wantTicks := []int{96, 192, 288, 384}
	i := 0
	for _, n := range result.Pattern {
		if n.Row != pattern.RowKick {
			continue
		}
		if n.StartTick != wantTicks[i] {
			t.Errorf("kick %d StartTick = %d, want %d", i, n.StartTick, wantTicks[i])
		}
		i++
	}
	if result.SampleRate != 44100 {
		t.Errorf("SampleRate = %v, want 44100", result.SampleRate)
	}
	if result.HitCapacity {
		t.Error("HitCapacity = true for a 3 s file")
	}

	if len(updates) < 4 {
		t.Fatalf("got %d progress updates, want at least 4", len(updates))
	}
	first, last := updates[0], updates[len(updates)-1]
	if first.pass != 1 || first.name != "Capturing" || first.progress != 0 {
		t.Errorf("first update = %+v", first)
	}
	if last.pass != 2 || last.name != "Transcribing" || last.progress != 1 || last.result != result {
		t.Errorf("last update = %+v", last)
	}
	for i := 1; i < len(updates); i++ {
		if updates[i].pass < updates[i-1].pass {
			t.Errorf("pass went backwards at update %d", i)
		}
	}
}

func TestProcessFileStopsAtCapacity(t *testing.T) {
	path := writeTestWAV(t, fourBeats(), 44100)

	cfg := newTestConfig()
	cfg.MaxCaptureSeconds = 1.2
	result, err := ProcessFile(path, cfg, nil)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if !result.HitCapacity {
		t.Error("HitCapacity = false, want true")
	}
	// Only the beats at 0.5 s and 1.0 s fit.
	if got := result.Pattern.CountRow(pattern.RowKick); got != 2 {
		t.Errorf("kicks = %d, want 2", got)
	}
}

func TestProcessFileMissing(t *testing.T) {
	_, err := ProcessFile(filepath.Join(t.TempDir(), "missing.wav"), newTestConfig(), nil)
	if err == nil {
		t.Fatal("ProcessFile succeeded for a missing file")
	}
}

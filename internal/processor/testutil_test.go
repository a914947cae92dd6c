package processor

import (
	"path/filepath"
	"testing"

	"github.com/linuxmatters/rhythmimick/internal/audio"
)

// impulses returns n silent samples with unit impulses at the given sample
// offsets.
func impulses(n int, at ...int) []float32 {
	s := make([]float32, n)
	for _, i := range at {
		s[i] = 1
	}
	return s
}

// fourBeats is three seconds at 44.1 kHz with an impulse every half second,
// one per beat at 120 BPM.
func fourBeats() []float32 {
	const fs = 44100
	return impulses(3*fs, fs/2, fs, 3*fs/2, 2*fs)
}

// newTestConfig returns a config that does not depend on the host timezone.
func newTestConfig() Config {
	cfg := DefaultConfig()
	cfg.MainsFrequency = 50
	return cfg
}

// writeTestWAV writes samples to a mono WAV file in a temporary directory
// and returns its path.
func writeTestWAV(t *testing.T, samples []float32, sampleRate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "take.wav")
	if err := audio.WriteWAV(path, samples, sampleRate); err != nil {
		t.Fatalf("failed to write test audio: %v", err)
	}
	return path
}

package processor

import (
	"github.com/linuxmatters/rhythmimick/internal/capture"
	"github.com/linuxmatters/rhythmimick/internal/quantize"
)

// Config holds the engine settings. It is passed to NewEngine and never
// read from process-wide state.
type Config struct {
	// SampleRate is the expected input rate in Hz. Prepare replaces it with
	// the rate reported by the device or file.
	SampleRate float64

	// MaxCaptureSeconds caps a take. The default leaves a short margin past
	// one minute so a full minute of playing is never truncated.
	MaxCaptureSeconds float64

	Bars int // pattern length in bars, at least 1
	BPM  int // tempo, clamped to 40-240

	// MainsFrequency is the local grid frequency used by the hum check.
	// 0 detects it from the system timezone.
	MainsFrequency int
}

// DefaultConfig returns the default engine settings.
func DefaultConfig() Config {
	return Config{
		SampleRate:        capture.DefaultSampleRate,
		MaxCaptureSeconds: 65,
		Bars:              4,
		BPM:               120,
	}
}

// normalised returns a copy with out-of-range values replaced or clamped.
func (c Config) normalised() Config {
	d := DefaultConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = d.SampleRate
	}
	if c.MaxCaptureSeconds <= 0 {
		c.MaxCaptureSeconds = d.MaxCaptureSeconds
	}
	c.Bars = quantize.ClampBars(c.Bars)
	c.BPM = quantize.ClampBPM(c.BPM)
	return c
}

// Package quantize snaps analysis frames onto a 16th-note tick grid.
package quantize

import (
	"math"
)

// Grid constants
const (
	StepsPerBar  = 16
	TicksPerStep = 24

	MinBPM = 40
	MaxBPM = 240
)

// ClampBPM limits bpm to [MinBPM, MaxBPM].
func ClampBPM(bpm int) int {
	return max(MinBPM, min(bpm, MaxBPM))
}

// ClampBars returns at least one bar.
func ClampBars(bars int) int {
	return max(1, bars)
}

// Grid maps frame indices at a given hop and sample rate to pattern ticks.
type Grid struct {
	Bars       int
	BPM        int
	SampleRate float64
	Hop        int
}

// NewGrid returns a grid with bars and bpm clamped to valid ranges.
func NewGrid(bars, bpm int, sampleRate float64, hop int) Grid {
	return Grid{
		Bars:       ClampBars(bars),
		BPM:        ClampBPM(bpm),
		SampleRate: sampleRate,
		Hop:        hop,
	}
}

// TotalSteps is the pattern length in 16th notes.
func (g Grid) TotalSteps() int {
	return ClampBars(g.Bars) * StepsPerBar
}

// TotalTicks is the pattern length in ticks.
func (g Grid) TotalTicks() int {
	return g.TotalSteps() * TicksPerStep
}

// SecondsPerStep is the duration of one 16th note.
func (g Grid) SecondsPerStep() float64 {
	return 60.0 / float64(ClampBPM(g.BPM)) / 4.0
}

// Seconds converts a frame index to elapsed time.
func (g Grid) Seconds(frame int) float64 {
	return float64(frame*g.Hop) / g.SampleRate
}

// Step returns the wrapped grid step nearest to frame.
func (g Grid) Step(frame int) int {
	step := int(math.Round(g.Seconds(frame) / g.SecondsPerStep()))
	return Wrap(step, g.TotalSteps())
}

// Tick returns the quantized start tick for frame.
func (g Grid) Tick(frame int) int {
	return g.Step(frame) * TicksPerStep
}

// Wrap folds step into [0, total), including negative inputs.
func Wrap(step, total int) int {
	if total <= 0 {
		return 0
	}
	return ((step % total) + total) % total
}

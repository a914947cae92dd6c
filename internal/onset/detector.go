// Package onset finds percussive hits in a mono recording.
//
// Each band produces a normalized energy envelope over a sliding window of a
// pre-emphasized signal; onsets are local maxima above a band threshold that
// respect a per-band refractory gap.
package onset

import (
	"math"
)

// Analysis window constants
const (
	WindowSize  = 1024
	HopSize     = 512
	PreEmphasis = 0.97

	// normFloor keeps a silent band from dividing by zero.
	normFloor = 1e-6
)

// Band identifies one of the fixed analysis bands.
type Band int

const (
	BandLow Band = iota
	BandMid
	BandHigh
)

// Bands lists the analysis bands in assembly order.
var Bands = [...]Band{BandLow, BandMid, BandHigh}

// BandParams describes one band's range and detection constants.
//
// Weight is an empirical de-emphasis applied to the emphasized magnitude.
// It is not a filter; the frequency range is descriptive.
type BandParams struct {
	Name      string
	LowHz     float64
	HighHz    float64
	Weight    float32
	Threshold float32
	MinGapSec float64
}

var bandParams = [...]BandParams{
	BandLow:  {Name: "low", LowHz: 20, HighHz: 200, Weight: 1.0, Threshold: 0.35, MinGapSec: 0.040},
	BandMid:  {Name: "mid", LowHz: 200, HighHz: 2000, Weight: 0.7, Threshold: 0.30, MinGapSec: 0.050},
	BandHigh: {Name: "high", LowHz: 5000, HighHz: 20000, Weight: 0.5, Threshold: 0.28, MinGapSec: 0.030},
}

// Params returns the detection constants for b.
func (b Band) Params() BandParams {
	return bandParams[b]
}

func (b Band) String() string {
	if b < 0 || int(b) >= len(bandParams) {
		return "unknown"
	}
	return bandParams[b].Name
}

// GapFrames converts the band's refractory gap to hops at sampleRate.
func (b Band) GapFrames(sampleRate float64) int {
	return int(math.Round(bandParams[b].MinGapSec * sampleRate / HopSize))
}

// Event is a detected onset: the analysis frame index and its band.
type Event struct {
	Frame int
	Band  Band
}

// BandResult holds one band's envelope statistics and onsets.
type BandResult struct {
	Band      Band
	Frames    int     // envelope length
	PeakRaw   float32 // maximum weighted energy before normalization
	GapFrames int
	Onsets    []Event
}

// Result is the outcome of analysing one recording.
type Result struct {
	Bands [len(Bands)]BandResult
}

// Events returns all onsets, low band first, each band in frame order.
func (r *Result) Events() []Event {
	var out []Event
	for _, br := range r.Bands {
		out = append(out, br.Onsets...)
	}
	return out
}

// Count returns the number of onsets in band b.
func (r *Result) Count(b Band) int {
	return len(r.Bands[b].Onsets)
}

// Analyze computes envelopes and onsets for every band. Empty input, or input
// shorter than one window, yields a result with no onsets.
func Analyze(samples []float32, sampleRate float64) *Result {
	res := &Result{}
	for _, b := range Bands {
		env, peak := Envelope(samples, b)
		gap := b.GapFrames(sampleRate)
		res.Bands[b] = BandResult{
			Band:      b,
			Frames:    len(env),
			PeakRaw:   peak,
			GapFrames: gap,
			Onsets:    PickPeaks(env, b, bandParams[b].Threshold, gap),
		}
	}
	return res
}

// Envelope returns the normalized energy envelope of samples for band b, and
// the raw maximum it was normalized by (before the floor is applied).
//
// Frame i covers samples [i*HopSize, i*HopSize+WindowSize). Pre-emphasis
// restarts at each window, so a window's first sample has no predecessor.
func Envelope(samples []float32, b Band) ([]float32, float32) {
	n := len(samples)
	if n < WindowSize {
		return nil, 0
	}

	weight := bandParams[b].Weight
	env := make([]float32, 0, n/HopSize+8)

	for i := 0; i+WindowSize <= n; i += HopSize {
		win := samples[i : i+WindowSize]
		var e float32
		for k, x := range win {
			y := x
			if k > 0 {
				y -= PreEmphasis * win[k-1]
			}
			e += abs32(y) * weight
		}
		env = append(env, e/WindowSize)
	}

	var peak float32
	for _, v := range env {
		peak = max(peak, v)
	}
	scale := max(float32(normFloor), peak)
	for i := range env {
		env[i] /= scale
	}
	return env, peak
}

// PickPeaks returns local maxima of env above threshold, at least gapFrames
// apart. The first and last frames are never candidates.
func PickPeaks(env []float32, b Band, threshold float32, gapFrames int) []Event {
	var events []Event
	last := -gapFrames
	for i := 1; i+1 < len(env); i++ {
		v := env[i]
		if v > threshold && v >= env[i-1] && v >= env[i+1] && i-last >= gapFrames {
			events = append(events, Event{Frame: i, Band: b})
			last = i
		}
	}
	return events
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

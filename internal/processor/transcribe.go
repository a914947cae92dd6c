package processor

import (
	"math"

	"github.com/linuxmatters/rhythmimick/internal/mains"
	"github.com/linuxmatters/rhythmimick/internal/onset"
	"github.com/linuxmatters/rhythmimick/internal/pattern"
	"github.com/linuxmatters/rhythmimick/internal/quantize"
)

// SilenceDB is the level reported for digital silence.
const SilenceDB = -120.0

// BandStats summarises onset detection in one band.
type BandStats struct {
	Band      onset.Band
	Name      string
	Onsets    int
	PeakRaw   float32 // weighted window energy before normalization
	GapFrames int     // minimum frames between onsets
	Threshold float32
}

// Result is the outcome of transcribing one take.
type Result struct {
	Pattern pattern.Pattern
	Bands   []BandStats
	Grid    quantize.Grid

	SampleRate float64
	Samples    int
	Duration   float64 // seconds
	MaxSeconds float64 // take cap, 0 when not captured live

	PeakDB float64 // sample peak in dBFS
	RMSDB  float64 // RMS level in dBFS

	MainsFrequency int     // Hz, 0 when the hum check was skipped
	HumRatio       float64 // mains hum RMS over total RMS

	HitCapacity bool // the take stopped because the buffer filled
}

// Bars returns the pattern length in bars.
func (r *Result) Bars() int {
	return r.Grid.Bars
}

// BPM returns the clamped tempo used for quantization.
func (r *Result) BPM() int {
	return r.Grid.BPM
}

// Transcribe converts mono samples into a drum pattern. Empty or very short
// input produces an empty pattern, never an error.
func Transcribe(samples []float32, sampleRate float64, bars, bpm int) *Result {
	return transcribe(samples, sampleRate, bars, bpm, 0)
}

func transcribe(samples []float32, sampleRate float64, bars, bpm, mainsHz int) *Result {
	grid := quantize.NewGrid(bars, bpm, sampleRate, onset.HopSize)
	onsets := onset.Analyze(samples, sampleRate)

	res := &Result{
		Pattern:    pattern.Assemble(onsets.Events(), grid),
		Grid:       grid,
		SampleRate: sampleRate,
		Samples:    len(samples),
	}
	if sampleRate > 0 {
		res.Duration = float64(len(samples)) / sampleRate
	}

	for _, br := range onsets.Bands {
		p := br.Band.Params()
		res.Bands = append(res.Bands, BandStats{
			Band:      br.Band,
			Name:      p.Name,
			Onsets:    len(br.Onsets),
			PeakRaw:   br.PeakRaw,
			GapFrames: br.GapFrames,
			Threshold: p.Threshold,
		})
	}

	res.PeakDB, res.RMSDB = levels(samples)

	if mainsHz > 0 {
		res.MainsFrequency = mainsHz
		res.HumRatio = mains.HumRatio(samples, sampleRate, mainsHz, mains.DefaultHarmonics)
	}

	return res
}

// levels returns the sample peak and RMS level in dBFS.
func levels(samples []float32) (peakDB, rmsDB float64) {
	if len(samples) == 0 {
		return SilenceDB, SilenceDB
	}
	var peak, sum float64
	for _, s := range samples {
		v := math.Abs(float64(s))
		peak = max(peak, v)
		sum += v * v
	}
	return toDB(peak), toDB(math.Sqrt(sum / float64(len(samples))))
}

func toDB(linear float64) float64 {
	if linear <= 0 {
		return SilenceDB
	}
	return max(SilenceDB, 20*math.Log10(linear))
}

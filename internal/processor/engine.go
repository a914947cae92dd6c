// Package processor ties capture, onset detection and quantization into a
// drum transcription engine.
package processor

import (
	"github.com/linuxmatters/rhythmimick/internal/capture"
	"github.com/linuxmatters/rhythmimick/internal/mains"
	"github.com/linuxmatters/rhythmimick/internal/pattern"
)

// Engine owns the capture controller for one session and runs analysis over
// whatever it has captured.
//
// Process is the only method safe to call from the audio callback. All other
// methods belong to the control goroutine.
type Engine struct {
	cfg     Config
	ctrl    *capture.Controller
	mainsHz int
}

// NewEngine creates an engine with its capture buffer sized for cfg.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.normalised()
	hz := cfg.MainsFrequency
	if hz <= 0 {
		hz = mains.Frequency()
	}
	return &Engine{
		cfg:     cfg,
		ctrl:    capture.NewController(cfg.SampleRate, cfg.MaxCaptureSeconds),
		mainsHz: hz,
	}
}

// Config returns the engine settings, including the prepared sample rate.
func (e *Engine) Config() Config {
	c := e.cfg
	c.MainsFrequency = e.mainsHz
	return c
}

// Prepare sizes the capture buffer for sampleRate. It must not run while the
// audio callback may call Process.
func (e *Engine) Prepare(sampleRate float64) {
	e.ctrl.Configure(sampleRate, e.cfg.MaxCaptureSeconds)
	e.cfg.SampleRate = e.ctrl.SampleRate()
}

// StartCapture starts a take from source, discarding any previous one.
func (e *Engine) StartCapture(source capture.Source) {
	e.ctrl.Start(source)
}

// StopCapture stops the current take. It is a no-op when idle.
func (e *Engine) StopCapture() {
	e.ctrl.Stop()
}

// IsCapturing reports whether a take is running. It turns false on its own
// when the capture buffer fills.
func (e *Engine) IsCapturing() bool {
	return e.ctrl.IsCapturing()
}

// CaptureState reports whether a take is running and from which source.
func (e *Engine) CaptureState() capture.State {
	return e.ctrl.State()
}

// CaptureElapsedSeconds returns the captured duration, clamped to the
// configured maximum.
func (e *Engine) CaptureElapsedSeconds() float64 {
	return e.ctrl.ElapsedSeconds()
}

// MaxCaptureSeconds returns the take length cap.
func (e *Engine) MaxCaptureSeconds() float64 {
	return e.ctrl.MaxSeconds()
}

// Process appends one block from the audio callback. It does not block,
// allocate or log.
func (e *Engine) Process(block capture.Block) {
	e.ctrl.Process(block)
}

// CapturedSamples returns the mono samples of the current take. The slice
// must not be modified and is only stable once capture has stopped.
func (e *Engine) CapturedSamples() []float32 {
	return e.ctrl.Samples()
}

// AnalyzeCapturedToDrumPattern transcribes the captured take. It returns an
// empty pattern when nothing was captured.
func (e *Engine) AnalyzeCapturedToDrumPattern(bars, bpm int) pattern.Pattern {
	return e.AnalyzeCaptured(bars, bpm).Pattern
}

// AnalyzeCaptured transcribes the captured take and reports the onset, level
// and hum measurements behind the pattern. Called during a take it analyses
// a snapshot of what has been captured so far.
func (e *Engine) AnalyzeCaptured(bars, bpm int) *Result {
	samples := e.ctrl.Samples()
	res := transcribe(samples, e.ctrl.SampleRate(), bars, bpm, e.mainsHz)
	res.HitCapacity = e.ctrl.Buffer().Full()
	res.MaxSeconds = e.ctrl.MaxSeconds()
	return res
}

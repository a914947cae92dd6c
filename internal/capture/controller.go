package capture

import (
	"sync/atomic"
)

// DefaultSampleRate is used when the host reports no usable rate.
const DefaultSampleRate = 44100.0

// Source identifies where the host routes captured audio from.
type Source int32

const (
	SourceLoopback Source = iota
	SourceMicrophone
)

// String returns the lower-case source name used by the CLI and store.
func (s Source) String() string {
	switch s {
	case SourceMicrophone:
		return "microphone"
	default:
		return "loopback"
	}
}

// ParseSource maps a CLI/store name back to a Source. Unknown names map to
// loopback.
func ParseSource(name string) Source {
	if name == "microphone" || name == "mic" {
		return SourceMicrophone
	}
	return SourceLoopback
}

// State is a snapshot of the controller: Idle, or Recording from Source.
type State struct {
	Recording bool
	Source    Source
}

// Controller is the record/stop state machine gating a Buffer.
//
// Start, Stop, Configure and the read accessors belong to the control
// context. Process is the audio callback. The recording flag is the only
// state both sides write, and it is atomic.
type Controller struct {
	buf        *Buffer
	recording  atomic.Bool
	source     atomic.Int32
	sampleRate float64
	maxSeconds float64
}

// NewController returns an idle controller with a buffer sized for
// maxSeconds at sampleRate.
func NewController(sampleRate, maxSeconds float64) *Controller {
	c := &Controller{buf: &Buffer{}}
	c.Configure(sampleRate, maxSeconds)
	return c
}

// Configure sets the sample rate and maximum duration and sizes the buffer.
// Must not be called while a callback may be appending.
func (c *Controller) Configure(sampleRate, maxSeconds float64) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if maxSeconds < 0 {
		maxSeconds = 0
	}
	c.recording.Store(false)
	c.sampleRate = sampleRate
	c.maxSeconds = maxSeconds
	c.buf.Configure(sampleRate, maxSeconds)
}

// Start begins a recording session from source. Starting while already
// recording restarts the session from zero; a block the callback is still
// appending from the old session is discarded.
func (c *Controller) Start(source Source) {
	c.recording.Store(false)
	c.source.Store(int32(source))
	c.buf.Reset()
	c.recording.Store(true)
}

// Stop ends the session. It does not wait for an in-flight callback, so one
// more block may land in the buffer. Stopping while idle is a no-op.
func (c *Controller) Stop() {
	c.recording.Store(false)
}

// Process is the real-time callback entry point. It reads the recording flag
// once and, when set, appends the block. Reaching capacity stops the session.
func (c *Controller) Process(block Block) {
	if !c.recording.Load() {
		return
	}
	if c.buf.Append(block) {
		c.recording.Store(false)
	}
}

// IsCapturing reports whether a session is active.
func (c *Controller) IsCapturing() bool {
	return c.recording.Load()
}

// State returns the current state.
func (c *Controller) State() State {
	return State{
		Recording: c.recording.Load(),
		Source:    Source(c.source.Load()),
	}
}

// ElapsedSeconds returns the captured duration, clamped to [0, maxSeconds].
func (c *Controller) ElapsedSeconds() float64 {
	secs := float64(c.buf.Len()) / c.sampleRate
	return max(0, min(secs, c.maxSeconds))
}

// Samples returns the captured mono samples. Call after observing
// IsCapturing() == false for a stable view; earlier calls see a valid but
// still-growing prefix.
func (c *Controller) Samples() []float32 {
	return c.buf.Samples()
}

// SampleRate returns the configured sample rate.
func (c *Controller) SampleRate() float64 {
	return c.sampleRate
}

// MaxSeconds returns the configured capture limit.
func (c *Controller) MaxSeconds() float64 {
	return c.maxSeconds
}

// Buffer exposes the underlying store for inspection.
func (c *Controller) Buffer() *Buffer {
	return c.buf
}

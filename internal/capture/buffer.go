// Package capture records live audio into a bounded mono store from a
// real-time callback.
package capture

import (
	"math"
	"sync/atomic"
)

// Block is one host callback's worth of interleaved audio.
// The engine only reads it; the host owns the memory.
type Block struct {
	Data     []float32 // interleaved samples, frame-major
	Channels int       // channels per frame (values < 1 are treated as 1)
}

// Frames returns the number of whole frames in the block.
func (b Block) Frames() int {
	ch := b.Channels
	if ch < 1 {
		ch = 1
	}
	return len(b.Data) / ch
}

// Buffer is a fixed-capacity, linear-fill-then-stop mono sample store.
//
// It is not a circular buffer: once the write position reaches capacity,
// further samples are dropped until Reset. Append is the only mutator on the
// real-time path; Configure must not run concurrently with it.
//
// The write position and a session generation share one atomic word. Reset
// bumps the generation, so an Append that began before a restart fails to
// commit instead of advancing the new session.
type Buffer struct {
	store []float32 // may be larger than limit after a rate change
	limit int       // ceil(maxSeconds * sampleRate)
	state atomic.Uint64
}

const (
	posBits = 32
	posMask = 1<<posBits - 1
)

// NewBuffer returns a buffer sized for maxSeconds of audio at sampleRate.
func NewBuffer(sampleRate, maxSeconds float64) *Buffer {
	b := &Buffer{}
	b.Configure(sampleRate, maxSeconds)
	return b
}

// CapacityFor returns ceil(maxSeconds * sampleRate), never negative.
func CapacityFor(sampleRate, maxSeconds float64) int {
	if sampleRate <= 0 || maxSeconds <= 0 {
		return 0
	}
	return int(min(math.Ceil(maxSeconds*sampleRate), posMask))
}

// Configure sets the capacity to CapacityFor(sampleRate, maxSeconds) and
// empties the buffer. The backing store only grows; a smaller capacity reuses
// it. Call it from the control context before recording begins.
func (b *Buffer) Configure(sampleRate, maxSeconds float64) {
	b.limit = CapacityFor(sampleRate, maxSeconds)
	if len(b.store) < b.limit {
		b.store = make([]float32, b.limit)
	}
	b.Reset()
}

// Reset rewinds the buffer to empty without releasing storage and starts a
// new session generation.
func (b *Buffer) Reset() {
	gen := b.state.Load() >> posBits
	b.state.Store((gen + 1) << posBits)
}

// Append downmixes block to mono and copies as many frames as still fit.
// It returns true once the buffer is full; frames beyond capacity are dropped.
// A block racing a Reset is discarded.
//
// Safe for the real-time path: no allocation, no locking, no logging.
func (b *Buffer) Append(block Block) (full bool) {
	st := b.state.Load()
	pos := int(st & posMask)
	free := b.limit - pos
	if free <= 0 {
		return true
	}

	ch := block.Channels
	if ch < 1 {
		ch = 1
	}
	n := min(free, len(block.Data)/ch)
	if n > 0 {
		gain := 1 / float32(ch)
		dst := b.store[pos : pos+n]
		if ch == 1 {
			copy(dst, block.Data[:n])
		} else {
			for i := range dst {
				frame := block.Data[i*ch : i*ch+ch]
				var sum float32
				for _, s := range frame {
					sum += s * gain
				}
				dst[i] = sum
			}
		}
		if !b.state.CompareAndSwap(st, st+uint64(n)) {
			// restarted while copying
			return false
		}
		pos += n
	}

	return pos >= b.limit
}

// Len returns the number of valid samples.
func (b *Buffer) Len() int {
	return int(b.state.Load() & posMask)
}

// Cap returns the capacity in samples for the current configuration.
func (b *Buffer) Cap() int {
	return b.limit
}

// Full reports whether the buffer has reached capacity.
func (b *Buffer) Full() bool {
	return b.Len() >= b.limit
}

// Samples returns a view of the valid samples. The slice aliases the store
// and must be treated as read-only; it is only stable once recording stopped.
func (b *Buffer) Samples() []float32 {
	n := min(b.Len(), b.limit)
	return b.store[:n:n]
}

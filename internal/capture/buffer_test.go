package capture

import (
	"math/rand"
	"testing"
)

// stereoBlock builds an interleaved two-channel block where the left channel
// counts up from start and the right channel is its negation plus an offset.
func stereoBlock(start, frames int) Block {
	data := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		data[i*2] = float32(start + i)
		data[i*2+1] = float32(start+i) + 2
	}
	return Block{Data: data, Channels: 2}
}

func TestCapacityFor(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		maxSeconds float64
		want       int
	}{
		{"whole", 44100, 65, 2866500},
		{"fractional_rounds_up", 1000, 0.0015, 2},
		{"zero_rate", 0, 10, 0},
		{"zero_seconds", 48000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CapacityFor(tt.sampleRate, tt.maxSeconds); got != tt.want {
				t.Errorf("CapacityFor(%v, %v) = %d, want %d", tt.sampleRate, tt.maxSeconds, got, tt.want)
			}
		})
	}
}

func TestAppendDownmixesInOrder(t *testing.T) {
	b := NewBuffer(100, 1) // 100 samples

	total := 0
	for _, frames := range []int{7, 13, 1, 40} {
		if full := b.Append(stereoBlock(total, frames)); full {
			t.Fatalf("buffer reported full after %d samples", total+frames)
		}
		total += frames
	}

	if b.Len() != total {
		t.Fatalf("Len() = %d, want %d", b.Len(), total)
	}

	samples := b.Samples()
	for i, got := range samples {
		want := float32(i) + 1 // (i + i+2) / 2
		if got != want {
			t.Fatalf("sample[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestAppendMono(t *testing.T) {
	b := NewBuffer(10, 1)
	b.Append(Block{Data: []float32{0.5, -0.25, 1}, Channels: 1})

	want := []float32{0.5, -0.25, 1}
	got := b.Samples()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAppendZeroChannelsTreatedAsMono(t *testing.T) {
	b := NewBuffer(10, 1)
	b.Append(Block{Data: []float32{0.1, 0.2}})
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
}

func TestAppendPartialAtBoundary(t *testing.T) {
	b := NewBuffer(10, 1) // 10 samples

	if full := b.Append(stereoBlock(0, 8)); full {
		t.Fatal("full after 8 of 10 samples")
	}
	if full := b.Append(stereoBlock(8, 5)); !full {
		t.Fatal("expected full after crossing capacity")
	}
	if b.Len() != 10 {
		t.Errorf("Len() = %d, want 10", b.Len())
	}
	if got := b.Samples()[9]; got != 10 {
		t.Errorf("last sample = %v, want 10", got)
	}

	// Further appends are dropped.
	if full := b.Append(stereoBlock(100, 4)); !full {
		t.Error("expected full on append after capacity")
	}
	if b.Len() != 10 {
		t.Errorf("Len() after overflow = %d, want 10", b.Len())
	}
	if got := b.Samples()[9]; got != 10 {
		t.Errorf("last sample changed after overflow: %v", got)
	}
}

func TestAppendRandomBlocksNeverExceedCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 50; trial++ {
		capacity := 1 + rng.Intn(5000)
		b := NewBuffer(float64(capacity), 1)

		written := 0
		for written < capacity*2 {
			frames := rng.Intn(700)
			channels := 1 + rng.Intn(4)
			block := Block{Data: make([]float32, frames*channels), Channels: channels}
			for i := range block.Data {
				block.Data[i] = 1
			}
			full := b.Append(block)
			written += frames

			want := min(written, capacity)
			if b.Len() != want {
				t.Fatalf("trial %d: Len() = %d, want %d", trial, b.Len(), want)
			}
			if full != (want == capacity) {
				t.Fatalf("trial %d: full = %v at %d/%d", trial, full, want, capacity)
			}
		}
		if b.Cap() != capacity {
			t.Fatalf("trial %d: Cap() = %d, want %d", trial, b.Cap(), capacity)
		}
	}
}

func TestResetMatchesFreshBuffer(t *testing.T) {
	reused := NewBuffer(50, 1)
	reused.Append(stereoBlock(1000, 50))
	reused.Reset()

	fresh := NewBuffer(50, 1)

	for _, b := range []*Buffer{reused, fresh} {
		b.Append(stereoBlock(0, 12))
		b.Append(stereoBlock(12, 3))
	}

	a, f := reused.Samples(), fresh.Samples()
	if len(a) != len(f) {
		t.Fatalf("len reused = %d, fresh = %d", len(a), len(f))
	}
	for i := range a {
		if a[i] != f[i] {
			t.Fatalf("sample[%d]: reused %v, fresh %v", i, a[i], f[i])
		}
	}
}

func TestConfigureReusesLargerStore(t *testing.T) {
	b := NewBuffer(100, 2)
	if b.Cap() != 200 {
		t.Fatalf("Cap() = %d, want 200", b.Cap())
	}
	store := &b.store[0]

	b.Configure(100, 1)
	if b.Cap() != 100 {
		t.Errorf("Cap() after shrinking = %d, want 100", b.Cap())
	}
	if &b.store[0] != store {
		t.Error("Configure reallocated a store that was already large enough")
	}

	// Capacity is the new limit, not the size of the reused store.
	if full := b.Append(Block{Data: make([]float32, 150), Channels: 1}); !full {
		t.Error("Append did not report full at the new capacity")
	}
	if b.Len() != 100 || len(b.Samples()) != 100 || !b.Full() {
		t.Errorf("Len() = %d, len(Samples()) = %d, Full() = %v; want 100, 100, true",
			b.Len(), len(b.Samples()), b.Full())
	}

	b.Configure(100, 3)
	if b.Cap() != 300 || len(b.store) < 300 {
		t.Errorf("Configure did not grow the store: Cap() = %d, len(store) = %d", b.Cap(), len(b.store))
	}
	if b.Len() != 0 {
		t.Errorf("Len() after Configure = %d, want 0", b.Len())
	}
}

func TestResetInvalidatesInFlightAppend(t *testing.T) {
	b := NewBuffer(100, 1)
	b.Append(Block{Data: make([]float32, 10), Channels: 1})

	// An append that loaded its position before the restart must not commit.
	before := b.state.Load()
	b.Reset()
	if b.state.CompareAndSwap(before, before+5) {
		t.Fatal("commit from the previous session succeeded after Reset")
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d after Reset, want 0", b.Len())
	}

	b.Append(Block{Data: make([]float32, 7), Channels: 1})
	if b.Len() != 7 {
		t.Errorf("Len() = %d, want 7", b.Len())
	}
}

func TestAppendDoesNotAllocate(t *testing.T) {
	b := NewBuffer(48000, 60)
	block := stereoBlock(0, 512)

	allocs := testing.AllocsPerRun(100, func() {
		b.Append(block)
	})
	if allocs != 0 {
		t.Errorf("Append allocated %.1f times per call", allocs)
	}
}

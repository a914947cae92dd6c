package capture

import (
	"sync"
	"testing"
)

func TestControllerStateMachine(t *testing.T) {
	c := NewController(100, 1)

	if c.IsCapturing() {
		t.Fatal("new controller should be idle")
	}

	// Stop while idle is a no-op
	c.Stop()
	if c.IsCapturing() {
		t.Fatal("Stop while idle started capture")
	}

	c.Start(SourceMicrophone)
	st := c.State()
	if !st.Recording || st.Source != SourceMicrophone {
		t.Fatalf("State() = %+v, want recording from microphone", st)
	}

	c.Stop()
	if st := c.State(); st.Recording {
		t.Fatalf("State() after Stop = %+v, want idle", st)
	}
}

func TestControllerIgnoresBlocksWhileIdle(t *testing.T) {
	c := NewController(100, 1)
	c.Process(stereoBlock(0, 10))
	if n := c.Buffer().Len(); n != 0 {
		t.Errorf("idle controller captured %d samples", n)
	}
}

func TestControllerRestartOverwrites(t *testing.T) {
	c := NewController(100, 1)

	c.Start(SourceLoopback)
	c.Process(stereoBlock(500, 30))

	c.Start(SourceLoopback)
	c.Process(stereoBlock(0, 5))

	samples := c.Samples()
	if len(samples) != 5 {
		t.Fatalf("len(Samples()) = %d, want 5 after restart", len(samples))
	}
	if samples[0] != 1 {
		t.Errorf("first sample = %v, want 1", samples[0])
	}
}

func TestControllerAutoStopsAtCapacity(t *testing.T) {
	c := NewController(1000, 0.5) // 500 samples
	c.Start(SourceLoopback)

	blocks := 0
	for c.IsCapturing() {
		c.Process(stereoBlock(blocks*64, 64))
		blocks++
		if blocks > 100 {
			t.Fatal("capture never stopped")
		}
	}

	if n := c.Buffer().Len(); n != 500 {
		t.Errorf("Len() = %d, want 500", n)
	}

	// Blocks after the auto-stop do not touch the buffer.
	last := c.Samples()[499]
	c.Process(stereoBlock(9999, 64))
	if c.Samples()[499] != last || c.Buffer().Len() != 500 {
		t.Error("buffer changed after auto-stop")
	}
}

func TestControllerElapsedSeconds(t *testing.T) {
	c := NewController(1000, 2)
	c.Start(SourceLoopback)

	if got := c.ElapsedSeconds(); got != 0 {
		t.Errorf("ElapsedSeconds() = %v before any audio, want 0", got)
	}

	c.Process(stereoBlock(0, 250))
	if got := c.ElapsedSeconds(); got != 0.25 {
		t.Errorf("ElapsedSeconds() = %v, want 0.25", got)
	}

	for c.IsCapturing() {
		c.Process(stereoBlock(0, 512))
	}
	if got := c.ElapsedSeconds(); got != 2 {
		t.Errorf("ElapsedSeconds() at capacity = %v, want 2", got)
	}
}

func TestControllerInvalidSampleRateFallsBack(t *testing.T) {
	c := NewController(0, 1)
	if c.SampleRate() != DefaultSampleRate {
		t.Errorf("SampleRate() = %v, want %v", c.SampleRate(), DefaultSampleRate)
	}
	if c.Buffer().Cap() != int(DefaultSampleRate) {
		t.Errorf("Cap() = %d, want %d", c.Buffer().Cap(), int(DefaultSampleRate))
	}
}

func TestControllerConcurrentStop(t *testing.T) {
	c := NewController(48000, 10)
	c.Start(SourceLoopback)

	block := stereoBlock(0, 256)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			c.Process(block)
		}
	}()

	c.Stop()
	wg.Wait()

	// Whatever landed before the stop is a valid prefix.
	n := c.Buffer().Len()
	if n%256 != 0 || n > 500*256 {
		t.Errorf("Len() = %d, want a whole number of blocks", n)
	}
	if c.IsCapturing() {
		t.Error("still capturing after Stop")
	}
}

func TestControllerReconfigureToLowerRate(t *testing.T) {
	c := NewController(44100, 1)
	c.Configure(22050, 1)
	c.Start(SourceMicrophone)

	c.Process(Block{Data: make([]float32, 44100), Channels: 1})

	if c.IsCapturing() {
		t.Fatal("still capturing after filling the reconfigured buffer")
	}
	if n := len(c.Samples()); n != 22050 {
		t.Errorf("len(Samples()) = %d, want 22050", n)
	}
	if got := c.ElapsedSeconds(); got != 1 {
		t.Errorf("ElapsedSeconds() = %v, want 1", got)
	}
}

func TestControllerRestartWhileProcessing(t *testing.T) {
	c := NewController(48000, 10)
	c.Start(SourceLoopback)

	block := stereoBlock(0, 256)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				c.Process(block)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		c.Start(SourceLoopback)
	}
	close(done)
	wg.Wait()

	c.Start(SourceLoopback)
	c.Process(stereoBlock(0, 10))
	c.Stop()
	if n := c.Buffer().Len(); n != 10 {
		t.Errorf("Len() after a clean restart = %d, want 10", n)
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		name string
		want Source
	}{
		{"loopback", SourceLoopback},
		{"microphone", SourceMicrophone},
		{"mic", SourceMicrophone},
		{"", SourceLoopback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSource(tt.name)
			if got != tt.want {
				t.Errorf("ParseSource(%q) = %v, want %v", tt.name, got, tt.want)
			}
			if tt.name == tt.want.String() && got.String() != tt.name {
				t.Errorf("String() = %q, want %q", got.String(), tt.name)
			}
		})
	}
}

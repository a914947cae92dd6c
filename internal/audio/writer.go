package audio

import (
	"fmt"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// monoStreamer plays a mono float32 slice as a beep stream.
type monoStreamer struct {
	samples []float32
	pos     int
}

func (m *monoStreamer) Stream(out [][2]float64) (int, bool) {
	if m.pos >= len(m.samples) {
		return 0, false
	}
	n := fillStereo(out, m.samples[m.pos:])
	m.pos += n
	return n, true
}

func (m *monoStreamer) Err() error { return nil }

func fillStereo(out [][2]float64, in []float32) int {
	n := min(len(out), len(in))
	for i := 0; i < n; i++ {
		v := float64(in[i])
		out[i] = [2]float64{v, v}
	}
	return n
}

// WriteWAV saves mono samples as a 16-bit mono WAV file.
func WriteWAV(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 1,
		Precision:   2,
	}
	if err := wav.Encode(f, &monoStreamer{samples: samples}, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	return f.Close()
}

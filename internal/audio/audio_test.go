package audio

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"
)

func TestWriteWAVReadBlock(t *testing.T) {
	const sampleRate = 8000
	samples := make([]float32, sampleRate/2)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/sampleRate))
	}

	path := filepath.Join(t.TempDir(), "take.wav")
	if err := WriteWAV(path, samples, sampleRate); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	reader, meta, err := OpenAudioFile(path, 128)
	if err != nil {
		t.Fatalf("OpenAudioFile: %v", err)
	}
	defer reader.Close()

	if meta.SampleRate != sampleRate || meta.Channels != 1 || meta.Frames != len(samples) {
		t.Fatalf("metadata = %+v", meta)
	}
	if math.Abs(meta.Duration-0.5) > 1e-6 {
		t.Errorf("Duration = %v, want 0.5", meta.Duration)
	}

	var got []float32
	for {
		block, err := reader.ReadBlock()
		if err != nil {
			t.Fatalf("ReadBlock: %v", err)
		}
		if block.Frames() == 0 {
			break
		}
		if block.Channels != 1 {
			t.Fatalf("block channels = %d, want 1", block.Channels)
		}
		if block.Frames() > 128 {
			t.Fatalf("block of %d frames exceeds 128", block.Frames())
		}
		got = append(got, block.Data...)
	}

	if len(got) != len(samples) {
		t.Fatalf("read %d samples, want %d", len(got), len(samples))
	}
	// 16-bit quantization
	for i := range samples {
		if d := math.Abs(float64(got[i] - samples[i])); d > 1.0/4096 {
			t.Fatalf("sample[%d] = %v, want %v", i, got[i], samples[i])
		}
	}
}

func TestOpenAudioFileRejectsUnknownExtension(t *testing.T) {
	if _, _, err := OpenAudioFile(filepath.Join(t.TempDir(), "take.ogg"), 0); err == nil {
		t.Error("expected error for missing/unsupported file")
	}
}

func TestBlockFromBytes(t *testing.T) {
	raw := make([]byte, 4*4)
	for i, v := range []float32{0.25, -0.5, 1, 0} {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}

	block, ok := blockFromBytes(raw, 2, 2)
	if !ok {
		t.Fatal("blockFromBytes rejected a valid buffer")
	}
	if block.Channels != 2 || block.Frames() != 2 {
		t.Fatalf("block = %d ch, %d frames", block.Channels, block.Frames())
	}
	if block.Data[1] != -0.5 || block.Data[2] != 1 {
		t.Errorf("block data = %v", block.Data)
	}

	if _, ok := blockFromBytes(raw, 4, 2); ok {
		t.Error("blockFromBytes accepted a short buffer")
	}
	if _, ok := blockFromBytes(nil, 0, 2); ok {
		t.Error("blockFromBytes accepted an empty buffer")
	}
}

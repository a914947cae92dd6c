// Package audio provides audio file I/O using beep and live device input
// using miniaudio.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"

	"github.com/linuxmatters/rhythmimick/internal/capture"
)

// Reader wraps a beep decoder and hands out interleaved float32 blocks, the
// same shape a host audio callback delivers.
type Reader struct {
	stream   beep.StreamSeekCloser
	channels int
	scratch  [][2]float64
	block    []float32
}

// Metadata contains audio file metadata
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitDepth   int
	Frames     int
	Format     string
}

// OpenAudioFile opens a WAV or FLAC file for block reading.
// blockFrames sets the frames per ReadBlock call.
func OpenAudioFile(filename string, blockFrames int) (*Reader, *Metadata, error) {
	if blockFrames <= 0 {
		blockFrames = 512
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
		kind   string
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".flac":
		kind = "flac"
		stream, format, err = flac.Decode(f)
	case ".wav", ".wave":
		kind = "wav"
		stream, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, nil, fmt.Errorf("unsupported audio format %q: %s", ext, filename)
	}
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	channels := format.NumChannels
	if channels < 1 || channels > 2 {
		channels = 2
	}

	frames := stream.Len()
	metadata := &Metadata{
		SampleRate: int(format.SampleRate),
		Channels:   format.NumChannels,
		BitDepth:   format.Precision * 8,
		Frames:     frames,
		Format:     kind,
	}
	if format.SampleRate > 0 {
		metadata.Duration = format.SampleRate.D(frames).Seconds()
	}

	reader := &Reader{
		stream:   stream,
		channels: channels,
		scratch:  make([][2]float64, blockFrames),
		block:    make([]float32, blockFrames*channels),
	}
	return reader, metadata, nil
}

// ReadBlock decodes the next block. It returns an empty block and nil error
// at end of file. The returned block is reused by the next call.
func (r *Reader) ReadBlock() (capture.Block, error) {
	n, ok := r.stream.Stream(r.scratch)
	if !ok || n == 0 {
		if err := r.stream.Err(); err != nil {
			return capture.Block{}, fmt.Errorf("failed to read frames: %w", err)
		}
		return capture.Block{Channels: r.channels}, nil
	}

	data := r.block[:n*r.channels]
	for i, frame := range r.scratch[:n] {
		if r.channels == 1 {
			data[i] = float32(frame[0])
			continue
		}
		data[i*2] = float32(frame[0])
		data[i*2+1] = float32(frame[1])
	}
	return capture.Block{Data: data, Channels: r.channels}, nil
}

// Position returns the current frame position.
func (r *Reader) Position() int {
	return r.stream.Position()
}

// Close releases the decoder. The decoder owns the file handle.
func (r *Reader) Close() error {
	return r.stream.Close()
}

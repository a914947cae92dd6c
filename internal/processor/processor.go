package processor

import (
	"fmt"
	"math"

	"github.com/linuxmatters/rhythmimick/internal/audio"
	"github.com/linuxmatters/rhythmimick/internal/capture"
	"github.com/linuxmatters/rhythmimick/internal/onset"
)

// ProgressFunc receives progress updates from ProcessFile.
// Pass 1 is "Capturing", pass 2 is "Transcribing". level is the most recent
// block peak in dBFS. result is nil until pass 2 completes.
type ProgressFunc func(pass int, passName string, progress float64, level float64, result *Result)

// progressEvery is the number of blocks between pass 1 progress updates.
const progressEvery = 32

// ProcessFile transcribes an audio file in two passes:
// - Pass 1: feed the file through the capture engine block by block, as the
// audio callback would, until end of file or the capture cap
// - Pass 2: transcribe the captured take
//
// If progressCallback is not nil, it will be called with progress updates.
func ProcessFile(inputPath string, cfg Config, progressCallback ProgressFunc) (*Result, error) {
	reader, metadata, err := audio.OpenAudioFile(inputPath, onset.HopSize)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", inputPath, err)
	}
	defer reader.Close()

	engine := NewEngine(cfg)
	engine.Prepare(float64(metadata.SampleRate))
	cfg = engine.Config()

	if progressCallback != nil {
		progressCallback(1, "Capturing", 0.0, SilenceDB, nil)
	}

	// A file plays back like any other program output.
	engine.StartCapture(capture.SourceLoopback)

	blocks := 0
	for {
		block, err := reader.ReadBlock()
		if err != nil {
			engine.StopCapture()
			return nil, fmt.Errorf("pass 1 failed: %w", err)
		}
		if block.Frames() == 0 {
			break
		}

		engine.Process(block)
		blocks++

		if progressCallback != nil && blocks%progressEvery == 0 {
			progressCallback(1, "Capturing", captureProgress(reader.Position(), metadata.Frames), blockPeakDB(block), nil)
		}

		if !engine.IsCapturing() {
			// buffer full
			break
		}
	}
	engine.StopCapture()

	if progressCallback != nil {
		progressCallback(1, "Capturing", 1.0, SilenceDB, nil)
		progressCallback(2, "Transcribing", 0.0, SilenceDB, nil)
	}

	result := engine.AnalyzeCaptured(cfg.Bars, cfg.BPM)

	if progressCallback != nil {
		progressCallback(2, "Transcribing", 1.0, result.PeakDB, result)
	}

	return result, nil
}

func captureProgress(position, total int) float64 {
	if total <= 0 {
		return 0
	}
	return min(1.0, float64(position)/float64(total))
}

func blockPeakDB(block capture.Block) float64 {
	var peak float64
	for _, s := range block.Data {
		peak = max(peak, math.Abs(float64(s)))
	}
	return toDB(peak)
}

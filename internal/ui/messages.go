package ui

import (
	"time"

	"github.com/linuxmatters/rhythmimick/internal/processor"
)

// ProgressMsg represents a progress update from the processor
type ProgressMsg struct {
	Pass     int     // 1 or 2
	PassName string  // "Capturing" or "Transcribing"
	Progress float64 // 0.0 to 1.0
	Level    float64 // Most recent block peak in dBFS
	Result   *processor.Result
}

// FileStartMsg indicates a new file has started processing
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished processing
type FileCompleteMsg struct {
	FileIndex  int
	Result     *processor.Result
	TakeID     string
	MIDIPath   string
	ReportPath string
	Error      error
}

// AllCompleteMsg indicates all files have been processed
type AllCompleteMsg struct{}

// AnalysisCompleteMsg signals a live take has been transcribed
type AnalysisCompleteMsg struct {
	Result  *processor.Result
	Elapsed time.Duration
}

// tickMsg is sent for spinner/timer animation
type tickMsg time.Time

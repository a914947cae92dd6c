// Package ui provides the Bubbletea terminal user interface for rhythmimick
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/rhythmimick/internal/logging"
	"github.com/linuxmatters/rhythmimick/internal/processor"
)

// FileStatus represents the processing state of a single file
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusCapturing
	StatusTranscribing
	StatusComplete
	StatusError
)

// FileProgress tracks progress for a single audio file
type FileProgress struct {
	InputPath string
	Status    FileStatus

	// Phase tracking
	CurrentPass int // 1 or 2
	PassName    string

	// Progress tracking (percentage-based)
	Progress    float64 // 0.0 to 1.0
	StartTime   time.Time
	ElapsedTime time.Duration

	CurrentLevel float64 // Most recent block peak in dBFS
	PeakLevel    float64 // Peak level seen so far

	// Completion results
	Result     *processor.Result
	TakeID     string
	MIDIPath   string
	ReportPath string

	Error error
}

// Model is the Bubbletea model for the file transcription UI
type Model struct {
	// File queue
	Files          []FileProgress
	CurrentIndex   int
	TotalFiles     int
	CompletedFiles int
	FailedFiles    int

	// Global state
	StartTime time.Time
	Done      bool

	// Channel for receiving progress updates from processor
	ProgressChan chan tea.Msg

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new UI model with the given input files
func NewModel(inputFiles []string) Model {
	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{
			InputPath: path,
			Status:    StatusQueued,
			PeakLevel: processor.SilenceDB,
		}
	}

	return Model{
		Files:        files,
		CurrentIndex: -1,
		TotalFiles:   len(inputFiles),
		StartTime:    time.Now(),
		ProgressChan: make(chan tea.Msg, 100),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return waitForProgress(m.ProgressChan)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		logging.Debugf("ui", "window size: %dx%d", m.Width, m.Height)

	case ProgressMsg:
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
			m.Files[m.CurrentIndex] = updateFileProgress(m.Files[m.CurrentIndex], msg)
		}
		return m, waitForProgress(m.ProgressChan)

	case FileStartMsg:
		logging.Debugf("ui", "file start: index=%d, file=%s", msg.FileIndex, msg.FileName)
		m.CurrentIndex = msg.FileIndex
		m.Files[m.CurrentIndex].Status = StatusCapturing
		m.Files[m.CurrentIndex].StartTime = time.Now()
		return m, waitForProgress(m.ProgressChan)

	case FileCompleteMsg:
		logging.Debugf("ui", "file complete: index=%d, err=%v", msg.FileIndex, msg.Error)
		if msg.FileIndex >= 0 && msg.FileIndex < len(m.Files) {
			f := &m.Files[msg.FileIndex]
			f.Result = msg.Result
			f.TakeID = msg.TakeID
			f.MIDIPath = msg.MIDIPath
			f.ReportPath = msg.ReportPath
			f.Error = msg.Error

			if msg.Error != nil {
				f.Status = StatusError
				m.FailedFiles++
			} else {
				f.Status = StatusComplete
				m.CompletedFiles++
			}
		}
		return m, waitForProgress(m.ProgressChan)

	case AllCompleteMsg:
		logging.Debugf("ui", "all files complete: %d ok, %d failed", m.CompletedFiles, m.FailedFiles)
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nFiles: %d\n", len(m.Files))
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderProcessingView(m)
}

// updateFileProgress updates a FileProgress based on a ProgressMsg
func updateFileProgress(fp FileProgress, msg ProgressMsg) FileProgress {
	// Reset the start time when transitioning to a new pass
	if msg.Pass != fp.CurrentPass {
		fp.StartTime = time.Now()
		logging.Debugf("ui", "pass transition: %d -> %d, peak %.1f dB", fp.CurrentPass, msg.Pass, fp.PeakLevel)
	}

	fp.Progress = msg.Progress
	fp.CurrentPass = msg.Pass
	fp.PassName = msg.PassName
	fp.ElapsedTime = time.Since(fp.StartTime)

	if msg.Result != nil {
		fp.Result = msg.Result
	}

	if msg.Level > processor.SilenceDB {
		fp.CurrentLevel = msg.Level
		fp.PeakLevel = max(fp.PeakLevel, msg.Level)
	}

	switch msg.Pass {
	case 1:
		fp.Status = StatusCapturing
	case 2:
		fp.Status = StatusTranscribing
	}

	return fp
}

// waitForProgress creates a command that waits for progress messages
func waitForProgress(progressChan chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-progressChan
	}
}

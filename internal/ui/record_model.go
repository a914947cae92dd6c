package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/rhythmimick/internal/capture"
	"github.com/linuxmatters/rhythmimick/internal/logging"
	"github.com/linuxmatters/rhythmimick/internal/processor"
)

// Spinner frames for indeterminate progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Recorder is the capture surface the record view drives.
type Recorder interface {
	StopCapture()
	IsCapturing() bool
	CaptureElapsedSeconds() float64
	MaxCaptureSeconds() float64
	AnalyzeCaptured(bars, bpm int) *processor.Result
}

// RecordModel is the Bubbletea model for a live take. Capture must already
// be running when the program starts.
type RecordModel struct {
	recorder Recorder
	Source   capture.Source
	Bars     int
	BPM      int

	// Progress tracking
	Elapsed    float64 // captured seconds
	MaxSeconds float64
	StartTime  time.Time

	spinnerIndex int

	Analyzing bool
	Cancelled bool
	Done      bool

	// Results (populated when complete)
	Result       *processor.Result
	AnalysisTime time.Duration

	// Terminal dimensions
	Width  int
	Height int
}

// NewRecordModel creates a record view for a take already capturing from source.
func NewRecordModel(r Recorder, source capture.Source, bars, bpm int) RecordModel {
	return RecordModel{
		recorder:   r,
		Source:     source,
		Bars:       bars,
		BPM:        bpm,
		MaxSeconds: r.MaxCaptureSeconds(),
		StartTime:  time.Now(),
	}
}

// Init initializes the model
func (m RecordModel) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick message every 100ms
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// analyzeCmd transcribes the captured take off the interactive goroutine.
func analyzeCmd(r Recorder, bars, bpm int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		res := r.AnalyzeCaptured(bars, bpm)
		return AnalysisCompleteMsg{Result: res, Elapsed: time.Since(start)}
	}
}

// stop ends the take and starts transcription. Safe to call more than once.
func (m RecordModel) stop(reason string) (RecordModel, tea.Cmd) {
	if m.Analyzing || m.Done {
		return m, nil
	}
	m.recorder.StopCapture()
	m.Elapsed = m.recorder.CaptureElapsedSeconds()
	m.Analyzing = true
	logging.Debugf("ui", "take stopped (%s) after %.2fs", reason, m.Elapsed)
	return m, analyzeCmd(m.recorder, m.Bars, m.BPM)
}

// Update handles messages and updates the model
func (m RecordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.recorder.StopCapture()
			m.Cancelled = true
			return m, tea.Quit
		case " ", "enter", "s":
			return m.stop("key")
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		if m.Done {
			return m, nil
		}
		m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		if !m.Analyzing {
			m.Elapsed = m.recorder.CaptureElapsedSeconds()
			if !m.recorder.IsCapturing() {
				// buffer filled
				var cmd tea.Cmd
				m, cmd = m.stop("capacity")
				return m, tea.Batch(cmd, tickCmd())
			}
		}
		return m, tickCmd()

	case AnalysisCompleteMsg:
		m.Result = msg.Result
		m.AnalysisTime = msg.Elapsed
		m.Analyzing = false
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m RecordModel) View() string {
	if m.Width == 0 {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(renderHeader(fmt.Sprintf("Recording from %s · %d bars at %d BPM", m.Source, m.Bars, m.BPM)))
	b.WriteString("\n\n")

	spinner := lipgloss.NewStyle().Foreground(primaryColor).Render(spinnerFrames[m.spinnerIndex])

	switch {
	case m.Done && m.Result != nil:
		b.WriteString(renderHitSummary(m.Result))
		b.WriteString("\n\n")
		b.WriteString(renderPatternGrid(m.Result.Pattern, m.Result.Grid))

	case m.Analyzing:
		b.WriteString(spinner)
		b.WriteString(fmt.Sprintf(" Transcribing %.1fs of audio...", m.Elapsed))
		b.WriteString("\n")

	default:
		b.WriteString(spinner)
		b.WriteString(" ")
		b.WriteString(renderCaptureBar(m.Elapsed, m.MaxSeconds, 40))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(mutedColor).Render("space/enter: stop and transcribe · q: cancel"))
		b.WriteString("\n")
	}

	return b.String()
}

// renderCaptureBar renders captured time against the take limit
func renderCaptureBar(elapsed, maxSeconds float64, width int) string {
	progress := 0.0
	if maxSeconds > 0 {
		progress = max(0, min(1, elapsed/maxSeconds))
	}
	filled := int(progress * float64(width))
	empty := width - filled

	filledStyle := lipgloss.NewStyle().Foreground(primaryColor)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))

	bar := filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("━", empty))

	return fmt.Sprintf("%s %s / %s", bar,
		formatElapsed(time.Duration(elapsed*float64(time.Second))),
		formatElapsed(time.Duration(maxSeconds*float64(time.Second))))
}

// formatElapsed formats elapsed time as MM:SS or HH:MM:SS
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

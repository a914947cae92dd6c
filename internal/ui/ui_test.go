package ui

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/rhythmimick/internal/capture"
	"github.com/linuxmatters/rhythmimick/internal/pattern"
	"github.com/linuxmatters/rhythmimick/internal/processor"
	"github.com/linuxmatters/rhythmimick/internal/quantize"
)

type fakeRecorder struct {
	capturing atomic.Bool
	elapsed   float64
	analyzed  int
}

func (f *fakeRecorder) StopCapture()                   { f.capturing.Store(false) }
func (f *fakeRecorder) IsCapturing() bool              { return f.capturing.Load() }
func (f *fakeRecorder) CaptureElapsedSeconds() float64 { return f.elapsed }
func (f *fakeRecorder) MaxCaptureSeconds() float64     { return 65 }
func (f *fakeRecorder) AnalyzeCaptured(bars, bpm int) *processor.Result {
	f.analyzed++
	return processor.Transcribe(nil, 44100, bars, bpm)
}

func newRecording() (*fakeRecorder, RecordModel) {
	rec := &fakeRecorder{elapsed: 1.5}
	rec.capturing.Store(true)
	return rec, NewRecordModel(rec, capture.SourceMicrophone, 4, 120)
}

func TestRecordModelStopKey(t *testing.T) {
	rec, m := newRecording()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(RecordModel)
	if rec.IsCapturing() {
		t.Fatal("capture still running after stop key")
	}
	if !m.Analyzing || cmd == nil {
		t.Fatalf("Analyzing=%v cmd=%v, want analysis started", m.Analyzing, cmd)
	}

	msg := cmd()
	done, ok := msg.(AnalysisCompleteMsg)
	if !ok {
		t.Fatalf("analysis command returned %T", msg)
	}
	if rec.analyzed != 1 {
		t.Errorf("AnalyzeCaptured called %d times, want 1", rec.analyzed)
	}

	next, _ = m.Update(done)
	m = next.(RecordModel)
	if !m.Done || m.Result == nil || m.Analyzing {
		t.Errorf("model after completion: Done=%v Result=%v Analyzing=%v", m.Done, m.Result, m.Analyzing)
	}

	// A second stop is ignored.
	if _, cmd := m.stop("key"); cmd != nil {
		t.Error("stop after completion started another analysis")
	}
}

func TestRecordModelAutoStopsAtCapacity(t *testing.T) {
	rec, m := newRecording()

	next, _ := m.Update(tickMsg{})
	m = next.(RecordModel)
	if m.Analyzing {
		t.Fatal("analysis started while still capturing")
	}
	if m.Elapsed != 1.5 {
		t.Errorf("Elapsed = %v, want 1.5", m.Elapsed)
	}

	// The audio callback fills the buffer and clears the flag.
	rec.capturing.Store(false)
	rec.elapsed = 65
	next, _ = m.Update(tickMsg{})
	m = next.(RecordModel)
	if !m.Analyzing {
		t.Error("analysis not started after capture stopped itself")
	}
	if m.Elapsed != 65 {
		t.Errorf("Elapsed = %v, want 65", m.Elapsed)
	}
}

func TestRecordModelCancel(t *testing.T) {
	rec, m := newRecording()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(RecordModel)
	if !m.Cancelled || rec.IsCapturing() {
		t.Errorf("Cancelled=%v capturing=%v", m.Cancelled, rec.IsCapturing())
	}
	if rec.analyzed != 0 {
		t.Error("cancel ran analysis")
	}
}

func TestModelFileLifecycle(t *testing.T) {
	m := NewModel([]string{"a.wav", "b.wav"})

	next, _ := m.Update(FileStartMsg{FileIndex: 0, FileName: "a.wav"})
	m = next.(Model)
	next, _ = m.Update(ProgressMsg{Pass: 1, PassName: "Capturing", Progress: 0.5, Level: -12})
	m = next.(Model)
	if f := m.Files[0]; f.Status != StatusCapturing || f.Progress != 0.5 || f.PeakLevel != -12 {
		t.Errorf("file 0 after progress = %+v", f)
	}

	next, _ = m.Update(ProgressMsg{Pass: 2, PassName: "Transcribing", Progress: 0, Level: processor.SilenceDB})
	m = next.(Model)
	if f := m.Files[0]; f.Status != StatusTranscribing || f.PeakLevel != -12 {
		t.Errorf("file 0 after pass 2 = %+v", f)
	}

	res := processor.Transcribe(nil, 44100, 4, 120)
	next, _ = m.Update(FileCompleteMsg{FileIndex: 0, Result: res, TakeID: "abcd1234"})
	m = next.(Model)
	next, _ = m.Update(FileStartMsg{FileIndex: 1, FileName: "b.wav"})
	m = next.(Model)
	next, _ = m.Update(FileCompleteMsg{FileIndex: 1, Error: errors.New("boom")})
	m = next.(Model)
	next, _ = m.Update(AllCompleteMsg{})
	m = next.(Model)

	if m.CompletedFiles != 1 || m.FailedFiles != 1 || !m.Done {
		t.Fatalf("completed=%d failed=%d done=%v", m.CompletedFiles, m.FailedFiles, m.Done)
	}
	if m.Files[0].Status != StatusComplete || m.Files[1].Status != StatusError {
		t.Errorf("statuses = %v, %v", m.Files[0].Status, m.Files[1].Status)
	}

	m.Width = 80
	out := m.View()
	for _, want := range []string{"Transcription Complete", "take abcd1234", "Error: boom", "1 transcribed, 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderPatternGrid(t *testing.T) {
	p := pattern.Pattern{
		{Row: pattern.RowKick, StartTick: 0},
		{Row: pattern.RowKick, StartTick: 16 * 24},
		{Row: pattern.RowHat, StartTick: 2 * 24},
	}
	out := renderPatternGrid(p, quantize.NewGrid(2, 120, 44100, 512))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	if got := strings.Count(lines[0], "●"); got != 2 {
		t.Errorf("kick row has %d hits, want 2: %q", got, lines[0])
	}
	if got := strings.Count(lines[1], "●"); got != 0 {
		t.Errorf("snare row has %d hits, want 0: %q", got, lines[1])
	}
	// two bars: 32 steps and 3 separators
	for i, l := range lines {
		if n := strings.Count(l, "●") + strings.Count(l, "·"); n != 32 {
			t.Errorf("row %d has %d steps, want 32", i, n)
		}
		if n := strings.Count(l, "│"); n != 3 {
			t.Errorf("row %d has %d separators, want 3", i, n)
		}
	}
}

func TestRenderCaptureBar(t *testing.T) {
	out := renderCaptureBar(30, 60, 10)
	if !strings.Contains(out, "00:30 / 01:00") {
		t.Errorf("renderCaptureBar() = %q", out)
	}
	if n := strings.Count(out, "━"); n != 10 {
		t.Errorf("bar has %d segments, want 10", n)
	}
}

// Package logging writes take reports and the debug log.

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/rhythmimick/internal/onset"
	"github.com/linuxmatters/rhythmimick/internal/pattern"
	"github.com/linuxmatters/rhythmimick/internal/processor"
	"github.com/linuxmatters/rhythmimick/internal/quantize"
)

// reportWidth is the wrap width for free text in reports.
const reportWidth = 72

// interpretHum describes the mains hum ratio.
func interpretHum(ratio float64) string {
	switch {
	case ratio < 0.1:
		return "clean"
	case ratio < 0.3:
		return "audible hum, unlikely to trigger kicks"
	default:
		return "strong hum, may trigger false kicks"
	}
}

// interpretPeak describes the sample peak level.
func interpretPeak(db float64) string {
	switch {
	case isDigitalSilence(db):
		return "digital silence"
	case db < -30:
		return "very quiet"
	case db < -0.1:
		return "good"
	default:
		return "clipping"
	}
}

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// ReportData contains all the information needed to generate a take report
type ReportData struct {
	InputPath  string // input file, empty for a live take
	Source     string // capture source name
	ReportPath string // destination; derived from InputPath when empty
	MIDIPath   string // exported MIDI file, if any
	TakeID     string // history id, if the take was stored
	StartTime  time.Time
	EndTime    time.Time
	Pass1Time  time.Duration // capture
	Pass2Time  time.Duration // transcription
	Result     *processor.Result
}

// ReportPathFor returns the default report path for an input file:
// groove.wav → groove-drums.log in the same directory.
func ReportPathFor(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "-drums.log"
}

// GenerateReport writes a transcription report and returns its path.
//
// Report structure:
// 1. Header - take info and timestamp
// 2. Processing Summary - pass timings
// 3. Levels - peak, RMS and mains hum
// 4. Onset Detection - per-band table
// 5. Pattern - step grid
// 6. Recording Tips
func GenerateReport(data ReportData) (string, error) {
	logPath := data.ReportPath
	if logPath == "" {
		if data.InputPath == "" {
			return "", fmt.Errorf("no report path for a live take")
		}
		logPath = ReportPathFor(data.InputPath)
	}

	f, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	writeReport(f, data)

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write log file: %w", err)
	}
	return logPath, nil
}

func writeReport(w io.Writer, data ReportData) {
	writeReportHeader(w, data)
	writeProcessingSummary(w, data)

	if data.Result == nil {
		return
	}

	writeLevelsTable(w, data.Result)
	writeOnsetTable(w, data.Result)
	writePatternGrid(w, data.Result)
	writeRecordingTips(w, GenerateRecordingTips(data.Result))
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// writeReportHeader outputs the report header with take info and timestamp.
func writeReportHeader(w io.Writer, data ReportData) {
	fmt.Fprintln(w, "Rhythmimick Transcription Report")
	fmt.Fprintln(w, "================================")
	if data.InputPath != "" {
		fmt.Fprintf(w, "File: %s\n", filepath.Base(data.InputPath))
	} else {
		fmt.Fprintf(w, "Source: %s\n", data.Source)
	}
	if data.TakeID != "" {
		fmt.Fprintf(w, "Take: %s\n", data.TakeID)
	}
	fmt.Fprintf(w, "Transcribed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	if r := data.Result; r != nil {
		fmt.Fprintf(w, "Duration: %s\n", formatDuration(time.Duration(r.Duration*float64(time.Second))))
		fmt.Fprintf(w, "Sample Rate: %.0f Hz\n", r.SampleRate)
		fmt.Fprintf(w, "Grid: %d bars at %d BPM (%d steps)\n", r.Bars(), r.BPM(), r.Grid.TotalSteps())
	}
	if data.MIDIPath != "" {
		fmt.Fprintf(w, "MIDI: %s\n", data.MIDIPath)
	}
	fmt.Fprintln(w, "")
}

// writeProcessingSummary outputs the time spent in each pass.
func writeProcessingSummary(w io.Writer, data ReportData) {
	writeSection(w, "Processing Summary")

	fmt.Fprintf(w, "Pass 1 (Capturing):    %s\n", formatDuration(data.Pass1Time))
	fmt.Fprintf(w, "Pass 2 (Transcribing): %s\n", formatDuration(data.Pass2Time))

	totalTime := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(w, "Total:                 %s", formatDuration(totalTime))

	if data.Result != nil && data.Result.Duration > 0 && totalTime > 0 && data.InputPath != "" {
		audioDuration := time.Duration(data.Result.Duration * float64(time.Second))
		rtf := float64(audioDuration) / float64(totalTime)
		fmt.Fprintf(w, " (%.0fx real-time)", rtf)
	}
	fmt.Fprintln(w, "")
	if data.Result != nil && data.Result.HitCapacity {
		fmt.Fprintf(w, "Capture stopped at the %.0f s limit\n", data.Result.MaxSeconds)
	}
	fmt.Fprintln(w, "")
}

// writeLevelsTable outputs peak, RMS and hum measurements.
func writeLevelsTable(w io.Writer, r *processor.Result) {
	writeSection(w, "Levels")

	table := NewMetricTable("Value")
	table.AddRow("Peak", []string{formatMetricDB(r.PeakDB, 1)}, "dBFS", interpretPeak(r.PeakDB))
	table.AddRow("RMS", []string{formatMetricDB(r.RMSDB, 1)}, "dBFS", "")
	if r.MainsFrequency > 0 {
		table.AddRow(fmt.Sprintf("Mains hum (%d Hz)", r.MainsFrequency),
			[]string{formatMetricPercent(r.HumRatio, 1)}, "", interpretHum(r.HumRatio))
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

// writeOnsetTable outputs per-band detection settings and results, one
// column per drum lane.
func writeOnsetTable(w io.Writer, r *processor.Result) {
	writeSection(w, "Onset Detection")

	headers := make([]string, len(r.Bands))
	bandRange := make([]string, len(r.Bands))
	threshold := make([]float64, len(r.Bands))
	gap := make([]string, len(r.Bands))
	onsets := make([]string, len(r.Bands))
	peak := make([]float64, len(r.Bands))
	for i, b := range r.Bands {
		p := b.Band.Params()
		headers[i] = pattern.LaneFor(b.Band).Name
		bandRange[i] = fmt.Sprintf("%.0f-%.0f", p.LowHz, p.HighHz)
		threshold[i] = float64(b.Threshold)
		gap[i] = fmt.Sprintf("%d (%.0f ms)", b.GapFrames, p.MinGapSec*1000)
		onsets[i] = fmt.Sprintf("%d", b.Onsets)
		peak[i] = float64(b.PeakRaw)
	}

	table := NewMetricTable(headers...)
	table.AddRow("Band", bandRange, "Hz", "")
	table.AddMetricRow("Threshold", threshold, 2, "", "")
	table.AddRow("Minimum gap", gap, "hops", "")
	table.AddMetricRow("Peak energy", peak, 4, "", "")
	table.AddRow("Onsets", onsets, "", "")
	fmt.Fprint(w, table.String())
	fmt.Fprintf(w, "Window %d samples, hop %d samples\n", onset.WindowSize, onset.HopSize)
	fmt.Fprintln(w, "")
}

// writePatternGrid outputs the pattern as one line of steps per lane, with
// bars separated by '|'.
func writePatternGrid(w io.Writer, r *processor.Result) {
	writeSection(w, "Pattern")

	if len(r.Pattern) == 0 {
		fmt.Fprintln(w, "No hits detected")
		fmt.Fprintln(w, "")
		return
	}

	lanes := pattern.Lanes()
	total := r.Grid.TotalSteps()
	steps := r.Pattern.Steps(len(lanes), total)

	nameWidth := 0
	for _, l := range lanes {
		nameWidth = max(nameWidth, len(l.Name))
	}

	for _, l := range lanes {
		var sb strings.Builder
		for s, hit := range steps[l.Row] {
			if s > 0 && s%quantize.StepsPerBar == 0 {
				sb.WriteByte('|')
			}
			if hit {
				sb.WriteByte('x')
			} else {
				sb.WriteByte('.')
			}
		}
		fmt.Fprintf(w, "%-*s  |%s|  %d hits\n", nameWidth, l.Name, sb.String(), r.Pattern.CountRow(l.Row))
	}
	fmt.Fprintln(w, "")
}

// writeRecordingTips outputs tips, wrapped, or nothing when none fired.
func writeRecordingTips(w io.Writer, tips []RecordingTip) {
	if len(tips) == 0 {
		return
	}
	writeSection(w, "Recording Tips")
	for _, tip := range tips {
		fmt.Fprintf(w, "* %s\n", wrapText(tip.Message, reportWidth, "  "))
	}
	fmt.Fprintln(w, "")
}

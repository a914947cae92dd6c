// Package logging writes take reports and the debug log.
// This file provides console display for --analysis-only mode.

package logging

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/rhythmimick/internal/audio"
	"github.com/linuxmatters/rhythmimick/internal/pattern"
	"github.com/linuxmatters/rhythmimick/internal/processor"
	"github.com/linuxmatters/rhythmimick/internal/quantize"
)

// maxListedHits caps the per-lane hit listing in the console summary.
const maxListedHits = 8

// DisplayAnalysisResults outputs a transcription summary to the console.
// Used by --analysis-only mode for a quick look without the interactive view.
func DisplayAnalysisResults(w io.Writer, inputPath string, metadata *audio.Metadata, r *processor.Result) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "ANALYSIS: %s\n", filepath.Base(inputPath))
	fmt.Fprintln(w, strings.Repeat("=", 70))

	if metadata != nil {
		fmt.Fprintf(w, "Duration:    %s\n", formatDurationHMS(metadata.Duration))
		fmt.Fprintf(w, "Sample Rate: %d Hz\n", metadata.SampleRate)
		fmt.Fprintf(w, "Channels:    %s\n", channelName(metadata.Channels))
		fmt.Fprintf(w, "Format:      %s, %d-bit\n", metadata.Format, metadata.BitDepth)
	}
	if r == nil {
		return
	}
	if r.HitCapacity {
		fmt.Fprintf(w, "Captured:    %s (limit reached)\n", formatDurationHMS(r.Duration))
	}
	fmt.Fprintln(w)

	writeAnalysisSection(w, "LEVELS")
	fmt.Fprintf(w, "  Peak:           %s dBFS (%s)\n", formatMetricDB(r.PeakDB, 1), interpretPeak(r.PeakDB))
	fmt.Fprintf(w, "  RMS:            %s dBFS\n", formatMetricDB(r.RMSDB, 1))
	if r.MainsFrequency > 0 {
		fmt.Fprintf(w, "  Mains Hum:      %s at %d Hz (%s)\n",
			formatMetricPercent(r.HumRatio, 1), r.MainsFrequency, interpretHum(r.HumRatio))
	}
	fmt.Fprintln(w)

	writeAnalysisSection(w, "GRID")
	fmt.Fprintf(w, "  Tempo:          %d BPM\n", r.BPM())
	fmt.Fprintf(w, "  Length:         %d bars, %d steps\n", r.Bars(), r.Grid.TotalSteps())
	fmt.Fprintf(w, "  Step:           %s\n", formatTimestamp(time.Duration(r.Grid.SecondsPerStep()*float64(time.Second))))
	fmt.Fprintln(w)

	writeAnalysisSection(w, "HITS")
	if len(r.Pattern) == 0 {
		fmt.Fprintln(w, "  none detected")
	}
	for _, lane := range pattern.Lanes() {
		var ticks []int
		for _, n := range r.Pattern {
			if n.Row == lane.Row {
				ticks = append(ticks, n.StartTick)
			}
		}
		if len(ticks) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-8s %3d  %s\n", lane.Name+":", len(ticks), formatStepList(ticks, r.Grid))
	}
	fmt.Fprintln(w)

	if tips := GenerateRecordingTips(r); len(tips) > 0 {
		writeAnalysisSection(w, "TIPS")
		for _, tip := range tips {
			fmt.Fprintf(w, "  - %s\n", wrapText(tip.Message, 66, "    "))
		}
	}
}

// formatStepList renders tick positions as bar.beat.sixteenth positions,
// truncated after maxListedHits.
func formatStepList(ticks []int, grid quantize.Grid) string {
	parts := make([]string, 0, min(len(ticks), maxListedHits)+1)
	for i, tick := range ticks {
		if i == maxListedHits {
			parts = append(parts, fmt.Sprintf("+%d more", len(ticks)-maxListedHits))
			break
		}
		step := quantize.Wrap(tick/quantize.TicksPerStep, grid.TotalSteps())
		bar := step/quantize.StepsPerBar + 1
		beat := (step%quantize.StepsPerBar)/4 + 1
		sixteenth := step%4 + 1
		parts = append(parts, fmt.Sprintf("%d.%d.%d", bar, beat, sixteenth))
	}
	return strings.Join(parts, " ")
}

// writeAnalysisSection writes a section header for analysis output.
func writeAnalysisSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
}

// channelName returns a human-readable channel name
func channelName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}

// formatDurationHMS formats duration as "Xh Ym Zs" or "Ym Zs" or "Z.Xs".
func formatDurationHMS(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}

	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	}
	return fmt.Sprintf("%dm %ds", minutes, secs)
}

// formatTimestamp formats a duration as a timestamp string (e.g., "1m 32s" or "0.125s").
func formatTimestamp(d time.Duration) string {
	totalSeconds := d.Seconds()
	if totalSeconds < 60 {
		return fmt.Sprintf("%.3gs", totalSeconds)
	}

	minutes := int(totalSeconds) / 60
	seconds := math.Mod(totalSeconds, 60)

	if minutes >= 60 {
		hours := minutes / 60
		minutes = minutes % 60
		return fmt.Sprintf("%dh %dm %.0fs", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %.0fs", minutes, seconds)
}

package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/rhythmimick/internal/pattern"
	"github.com/linuxmatters/rhythmimick/internal/processor"
	"github.com/linuxmatters/rhythmimick/internal/quantize"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#D35400")
	mutedColor   = lipgloss.Color("#888888")
	activeColor  = lipgloss.Color("#F1C40F")
	successColor = lipgloss.Color("#00AA00")
)

// laneColors colours each row of the pattern grid.
var laneColors = map[int]lipgloss.Color{
	pattern.RowKick:  lipgloss.Color("#E74C3C"),
	pattern.RowSnare: lipgloss.Color("#3498DB"),
	pattern.RowHat:   lipgloss.Color("#F1C40F"),
}

// renderProcessingView renders the main processing view
func renderProcessingView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(fmt.Sprintf("Transcribing %d file(s)", m.TotalFiles)))
	b.WriteString("\n\n")

	b.WriteString(renderFileQueue(m))
	b.WriteString("\n\n")

	b.WriteString(renderOverallProgress(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(subtitle string) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(primaryColor).
		Render("Rhythmimick 🥁 - Drum Transcriber")

	sub := lipgloss.NewStyle().
		Foreground(mutedColor).
		Italic(true).
		Render(subtitle)

	return title + "\n" + sub
}

// renderFileQueue renders the list of files with their status
func renderFileQueue(m Model) string {
	var b strings.Builder

	for _, file := range m.Files {
		b.WriteString(renderFileEntry(file))
		b.WriteString("\n")
	}

	return b.String()
}

// renderFileEntry renders a single file entry in the queue
func renderFileEntry(file FileProgress) string {
	fileName := filepath.Base(file.InputPath)

	switch file.Status {
	case StatusComplete:
		icon := lipgloss.NewStyle().Foreground(successColor).Render("✓")
		return fmt.Sprintf(" %s %s\n   %s", icon, fileName, renderHitSummary(file.Result))

	case StatusCapturing, StatusTranscribing:
		icon := lipgloss.NewStyle().Foreground(activeColor).Render("⚙")
		return fmt.Sprintf(" %s %s\n%s", icon, fileName, renderFileDetails(file))

	case StatusError:
		icon := lipgloss.NewStyle().Foreground(primaryColor).Render("✗")
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, fileName, file.Error)

	default:
		icon := lipgloss.NewStyle().Foreground(mutedColor).Render("○")
		return fmt.Sprintf(" %s %s\n   Queued...", icon, fileName)
	}
}

// renderHitSummary renders per-lane hit counts, e.g. "Kick 4 | Snare 2 | Hi-Hat 16".
func renderHitSummary(r *processor.Result) string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, 4)
	for _, lane := range pattern.Lanes() {
		parts = append(parts, fmt.Sprintf("%s %d", lane.Name, r.Pattern.CountRow(lane.Row)))
	}
	parts = append(parts, fmt.Sprintf("%d BPM", r.BPM()))
	return strings.Join(parts, " | ")
}

// renderFileDetails renders detailed progress for the active file
func renderFileDetails(file FileProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(0, 1).
		Width(60)

	var content strings.Builder

	passName := "Capturing Audio"
	if file.CurrentPass == 2 {
		passName = "Transcribing Drums"
	}
	content.WriteString(fmt.Sprintf("Pass %d/2: %s\n", max(1, file.CurrentPass), passName))

	content.WriteString(renderProgressBar(file.Progress, 40))
	content.WriteString("\n\n")

	elapsed := file.ElapsedTime.Seconds()
	var remaining float64
	if file.Progress > 0 {
		remaining = (elapsed / file.Progress) - elapsed
	}
	content.WriteString(fmt.Sprintf("⏱  Elapsed: %.1fs | Remaining: ~%.1fs\n", elapsed, remaining))

	if file.CurrentLevel != 0 {
		content.WriteString(fmt.Sprintf("📊 Current Level: %.1f dB | Peak: %.1f dB",
			file.CurrentLevel, file.PeakLevel))
	}

	return box.Render(content.String())
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	progress = max(0, min(1, progress))
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	percentage := int(progress * 100)

	return fmt.Sprintf("%s %d%%", bar, percentage)
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Padding(0, 1).
		Width(60)

	var content string
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
		content = fmt.Sprintf("Transcribing file %d of %d (%d complete)",
			m.CurrentIndex+1, m.TotalFiles, m.CompletedFiles)
	} else {
		content = fmt.Sprintf("Overall Progress: %d/%d complete", m.CompletedFiles, m.TotalFiles)
	}

	return box.Render(content)
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor).
		Render("✨ Transcription Complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	for _, file := range m.Files {
		switch file.Status {
		case StatusComplete:
			b.WriteString(renderCompletedFile(file))
			b.WriteString("\n")
		case StatusError:
			b.WriteString(renderFileEntry(file))
			b.WriteString("\n\n")
		}
	}

	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d transcribed, %d failed\n", m.CompletedFiles, m.FailedFiles))

	return b.String()
}

// renderCompletedFile renders a summary for a completed file
func renderCompletedFile(file FileProgress) string {
	var b strings.Builder

	icon := lipgloss.NewStyle().Foreground(successColor).Render("✓")
	b.WriteString(fmt.Sprintf(" %s %s", icon, filepath.Base(file.InputPath)))
	if file.TakeID != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(mutedColor).Render("  take " + file.TakeID))
	}
	b.WriteString("\n")

	if file.Result != nil {
		b.WriteString("   " + renderHitSummary(file.Result) + "\n")
		b.WriteString(indent(renderPatternGrid(file.Result.Pattern, file.Result.Grid), "   "))
	}
	if file.MIDIPath != "" {
		b.WriteString("   MIDI:   " + file.MIDIPath + "\n")
	}
	if file.ReportPath != "" {
		b.WriteString("   Report: " + file.ReportPath + "\n")
	}

	return b.String()
}

// renderPatternGrid renders one row of steps per lane: "●" for a hit,
// "·" for a rest, with bars separated by "│".
func renderPatternGrid(p pattern.Pattern, grid quantize.Grid) string {
	lanes := pattern.Lanes()
	steps := p.Steps(len(lanes), grid.TotalSteps())

	nameWidth := 0
	for _, l := range lanes {
		nameWidth = max(nameWidth, len(l.Name))
	}

	rest := lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")).Render("·")
	sep := lipgloss.NewStyle().Foreground(mutedColor).Render("│")

	var b strings.Builder
	for _, l := range lanes {
		style := lipgloss.NewStyle().Foreground(laneColors[l.Row])
		hit := style.Render("●")

		b.WriteString(style.Bold(true).Render(fmt.Sprintf("%-*s", nameWidth, l.Name)))
		b.WriteString(" ")
		b.WriteString(sep)
		for s, on := range steps[l.Row] {
			if s > 0 && s%quantize.StepsPerBar == 0 {
				b.WriteString(sep)
			}
			if on {
				b.WriteString(hit)
			} else {
				b.WriteString(rest)
			}
		}
		b.WriteString(sep)
		b.WriteString("\n")
	}
	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}

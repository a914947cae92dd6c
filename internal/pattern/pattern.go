// Package pattern holds the drum pattern model and turns detected onsets
// into drum notes.
package pattern

import (
	"fmt"

	"github.com/linuxmatters/rhythmimick/internal/onset"
	"github.com/linuxmatters/rhythmimick/internal/quantize"
)

// Percussion lanes
const (
	RowKick  = 0
	RowSnare = 1
	RowHat   = 2
)

// DrumNote is one hit in a drum pattern.
type DrumNote struct {
	Row         int `json:"row"`
	StartTick   int `json:"start_tick"`
	LengthTicks int `json:"length_ticks"`
	Velocity    int `json:"velocity"`
}

// Pattern is an unsorted collection of drum notes. Notes sharing a tick are
// kept; consumers decide whether to merge them.
type Pattern []DrumNote

// Lane describes how a band is written into the pattern.
type Lane struct {
	Row         int
	Name        string
	GMNote      uint8 // General MIDI percussion key
	LengthTicks int
	Velocity    int
}

// Velocities and lengths are fixed per lane; they are not derived from the
// detected energy.
var lanes = map[onset.Band]Lane{
	onset.BandLow:  {Row: RowKick, Name: "Kick", GMNote: 36, LengthTicks: 12, Velocity: 115},
	onset.BandMid:  {Row: RowSnare, Name: "Snare", GMNote: 38, LengthTicks: 12, Velocity: 108},
	onset.BandHigh: {Row: RowHat, Name: "Hi-Hat", GMNote: 42, LengthTicks: 12, Velocity: 80},
}

// LaneFor returns the lane a band maps to.
func LaneFor(b onset.Band) Lane {
	return lanes[b]
}

// Lanes returns the lanes in row order.
func Lanes() []Lane {
	out := make([]Lane, 0, len(onset.Bands))
	for _, b := range onset.Bands {
		out = append(out, lanes[b])
	}
	return out
}

// RowName returns the display name for a row, or a 1-based "Row N" label for
// rows no lane maps to.
func RowName(row int) string {
	for _, l := range lanes {
		if l.Row == row {
			return l.Name
		}
	}
	return fmt.Sprintf("Row %d", row+1)
}

// Assemble emits one note per onset, in the order given, quantized on grid.
func Assemble(events []onset.Event, grid quantize.Grid) Pattern {
	if len(events) == 0 {
		return Pattern{}
	}
	p := make(Pattern, 0, len(events))
	for _, ev := range events {
		l := lanes[ev.Band]
		p = append(p, DrumNote{
			Row:         l.Row,
			StartTick:   grid.Tick(ev.Frame),
			LengthTicks: l.LengthTicks,
			Velocity:    l.Velocity,
		})
	}
	return p
}

// CountRow returns the number of notes on row.
func (p Pattern) CountRow(row int) int {
	n := 0
	for _, note := range p {
		if note.Row == row {
			n++
		}
	}
	return n
}

// Steps returns, for each row, which grid steps carry at least one note.
// Notes off the step grid are placed on the step they start in.
func (p Pattern) Steps(rows, totalSteps int) [][]bool {
	grid := make([][]bool, rows)
	for r := range grid {
		grid[r] = make([]bool, totalSteps)
	}
	for _, note := range p {
		if note.Row < 0 || note.Row >= rows {
			continue
		}
		step := quantize.Wrap(note.StartTick/quantize.TicksPerStep, totalSteps)
		grid[note.Row][step] = true
	}
	return grid
}

package pattern

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/linuxmatters/rhythmimick/internal/quantize"
)

// MIDI export constants
const (
	DrumChannel     = 9 // channel 10, General MIDI percussion
	TicksPerQuarter = quantize.TicksPerStep * 4
)

type noteEvent struct {
	tick uint32
	off  bool
	key  uint8
	vel  uint8
}

// WriteSMF writes p as a two-track Standard MIDI File: tempo and meter on
// track 0, the drum lane on channel 10. Pattern ticks map one-to-one onto
// file ticks. Notes on rows without a General MIDI mapping are skipped.
func WriteSMF(w io.Writer, p Pattern, bpm, bars int) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var meta smf.Track
	meta.Add(0, smf.MetaTrackSequenceName("rhythmimick"))
	meta.Add(0, smf.MetaMeter(4, 4))
	meta.Add(0, smf.MetaTempo(float64(quantize.ClampBPM(bpm))))
	meta.Close(0)
	if err := s.Add(meta); err != nil {
		return fmt.Errorf("add tempo track: %w", err)
	}

	events := make([]noteEvent, 0, len(p)*2)
	for _, n := range p {
		key, ok := gmNoteForRow(n.Row)
		if !ok {
			continue
		}
		start := uint32(max(0, n.StartTick))
		length := uint32(max(1, n.LengthTicks))
		events = append(events,
			noteEvent{tick: start, key: key, vel: uint8(max(1, min(n.Velocity, 127)))},
			noteEvent{tick: start + length, off: true, key: key},
		)
	}

	// Releases sort before attacks on the same tick so back-to-back hits retrigger.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	var drums smf.Track
	drums.Add(0, smf.MetaInstrument("Drums"))
	var last uint32
	for _, ev := range events {
		delta := ev.tick - last
		if ev.off {
			drums.Add(delta, midi.NoteOff(DrumChannel, ev.key))
		} else {
			drums.Add(delta, midi.NoteOn(DrumChannel, ev.key, ev.vel))
		}
		last = ev.tick
	}

	end := uint32(quantize.ClampBars(bars) * quantize.StepsPerBar * quantize.TicksPerStep)
	var tail uint32
	if end > last {
		tail = end - last
	}
	drums.Close(tail)
	if err := s.Add(drums); err != nil {
		return fmt.Errorf("add drum track: %w", err)
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	return nil
}

// WriteSMFFile writes p to path as a Standard MIDI File.
func WriteSMFFile(path string, p Pattern, bpm, bars int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create midi file: %w", err)
	}
	if err := WriteSMF(f, p, bpm, bars); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func gmNoteForRow(row int) (uint8, bool) {
	for _, l := range lanes {
		if l.Row == row {
			return l.GMNote, true
		}
	}
	return 0, false
}

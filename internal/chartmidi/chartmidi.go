// Package chartmidi exports compiled charts as Standard MIDI Files.
package chartmidi

import (
	"io"
	"math"
	"sort"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"bms-hero/internal/bmstime"
	"bms-hero/internal/cbms"
)

// Options controls the export. Zero fields take their defaults.
type Options struct {
	// Resolution in ticks per quarter note, 480 by default.
	Resolution uint16
	// Channel is the MIDI channel notes are written to, 0-15.
	Channel uint8
	// NoteTicks is the length of every note, an eighth of a beat by default.
	NoteTicks uint32
	// Velocity defaults to 100.
	Velocity uint8
	// Name is written as the sequence name of the conductor track.
	Name string
}

func (o Options) withDefaults() Options {
	if o.Resolution == 0 {
		o.Resolution = 480
	}
	if o.NoteTicks == 0 {
		o.NoteTicks = uint32(o.Resolution) / 8
	}
	if o.Velocity == 0 {
		o.Velocity = 100
	}
	o.Channel &= 0x0f
	return o
}

type event struct {
	tick uint32
	msg  []byte
}

// Export writes chart as a format 1 SMF. The first track carries one tempo
// and meter change per timing section; the second holds a note for every
// non-zero command, keyed by the command's channel number. A beat is taken
// to be a quarter note.
func Export(w io.Writer, chart *cbms.Chart, tl *bmstime.Timings, opts Options) error {
	opts = opts.withDefaults()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(opts.Resolution)

	var conductor smf.Track
	if opts.Name != "" {
		conductor.Add(0, smf.MetaTrackSequenceName(opts.Name))
	}
	var last uint32
	for _, sec := range tl.Sections() {
		tick := ticksAt(sec.Start, tl, opts.Resolution)
		conductor.Add(tick-last, smf.MetaMeter(uint8(sec.BeatsPerBar), 4), smf.MetaTempo(sec.BPM))
		last = tick
	}
	conductor.Close(0)
	if err := s.Add(conductor); err != nil {
		return errors.Wrap(err, "add conductor track")
	}

	var events []event
	for tc := range chart.Iter().Flatten().All() {
		cmd, _ := chart.CommandAt(tc.Index)
		if cmd.Value == 0 {
			continue
		}
		key := uint8(min(cmd.Channel, 127))
		tick := ticksAt(tc.Time, tl, opts.Resolution)
		events = append(events,
			event{tick, midi.NoteOn(opts.Channel, key, opts.Velocity)},
			event{tick + opts.NoteTicks, midi.NoteOff(opts.Channel, key)},
		)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].tick < events[j].tick
	})

	var notes smf.Track
	last = 0
	for _, ev := range events {
		notes.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	notes.Close(0)
	if err := s.Add(notes); err != nil {
		return errors.Wrap(err, "add note track")
	}

	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(err, "write smf")
	}
	return nil
}

// ticksAt converts bar-time into ticks by summing whole sections, so the
// result does not go through floating point seconds.
func ticksAt(t bmstime.Time, tl *bmstime.Timings, resolution uint16) uint32 {
	var ticks float64
	for i := 0; i < tl.Len(); i++ {
		sec := tl.Section(i)
		perBar := float64(sec.BeatsPerBar) * float64(resolution)
		if i+1 < tl.Len() && t > tl.Section(i+1).Start {
			ticks += float64(tl.Section(i+1).Start-sec.Start) * perBar
			continue
		}
		ticks += float64(t-sec.Start) * perBar
		break
	}
	return uint32(math.Round(ticks))
}

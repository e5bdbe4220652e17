package cbms

import (
	"iter"

	"bms-hero/internal/bmstime"
)

// Slot is one step of a MeasureCursor: the commands that fall on one slot of
// a measure and the slot's position within that measure.
type Slot struct {
	Commands IndexRange
	Measure  uint32
	// Progress is slot/slots-in-measure, in [0,1).
	Progress float64
}

// Time returns the bar-time of the slot.
func (s Slot) Time() bmstime.Time {
	return bmstime.Time(float64(s.Measure) + s.Progress)
}

// MeasureCursor walks a chart slot by slot. It only reads the chart; any
// number of cursors may run over the same chart at once.
type MeasureCursor struct {
	chart  *Chart
	set    int
	cntPos int
	cmdPos int
}

// Next returns the next slot, or false once the last slot of the last
// measure has been returned.
func (it *MeasureCursor) Next() (Slot, bool) {
	sets := it.chart.measureSets
	for it.set < len(sets) && it.cntPos >= sets[it.set].CommandCntIdx.End {
		it.set++
	}
	if it.set >= len(sets) {
		return Slot{}, false
	}
	set := sets[it.set]
	n := it.chart.commandCnt[it.cntPos]
	slot := Slot{
		Commands: IndexRange{it.cmdPos, it.cmdPos + n},
		Measure:  set.Measure,
		Progress: float64(it.cntPos-set.CommandCntIdx.Start) / float64(set.CommandCntIdx.Len()),
	}
	it.cntPos++
	it.cmdPos += n
	return slot, true
}

// Slots returns the remaining slots as a sequence. Ranging over it advances
// the cursor.
func (it *MeasureCursor) Slots() iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		for {
			s, ok := it.Next()
			if !ok || !yield(s) {
				return
			}
		}
	}
}

// Flatten turns the cursor into one yielding single commands. The measure
// cursor must not be used directly afterwards.
func (it *MeasureCursor) Flatten() *FlattenCursor {
	return &FlattenCursor{slots: it}
}

// TimedCommand is the index of a command in the chart together with its
// bar-time.
type TimedCommand struct {
	Index int
	Time  bmstime.Time
}

// FlattenCursor yields every command of the underlying slots in ascending
// bar-time. Commands of one slot share the same time.
type FlattenCursor struct {
	slots *MeasureCursor
	cur   Slot
	pos   int
}

// Next returns the next command, or false when the chart is exhausted.
func (it *FlattenCursor) Next() (TimedCommand, bool) {
	for it.pos >= it.cur.Commands.End {
		s, ok := it.slots.Next()
		if !ok {
			return TimedCommand{}, false
		}
		it.cur = s
		it.pos = s.Commands.Start
	}
	tc := TimedCommand{Index: it.pos, Time: it.cur.Time()}
	it.pos++
	return tc, true
}

// All returns the remaining commands as a sequence.
func (it *FlattenCursor) All() iter.Seq[TimedCommand] {
	return func(yield func(TimedCommand) bool) {
		for {
			tc, ok := it.Next()
			if !ok || !yield(tc) {
				return
			}
		}
	}
}

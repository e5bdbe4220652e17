// Package cbms holds compiled charts: a compact, array-based form of a BMS
// chart in which every measure is quantized onto a single uniform slot grid.
package cbms

import (
	"sort"

	"github.com/pkg/errors"
)

var (
	// ErrBarOutOfRange is returned when a bar is at or past the bar count.
	ErrBarOutOfRange = errors.New("bar out of range")
	// ErrBarIsEmpty is returned for a bar that is in range but compiled to
	// no slots. Callers usually render nothing for it.
	ErrBarIsEmpty = errors.New("bar is empty")
)

// IndexRange is a half-open range [Start, End) into one of the chart's
// backing slices.
type IndexRange struct {
	Start int
	End   int
}

// Len returns the number of elements in the range.
func (r IndexRange) Len() int {
	return r.End - r.Start
}

// ChannelCommand is a single value sent to a channel. The value is opaque
// here; consumers interpret it, usually as a resource index.
type ChannelCommand struct {
	Channel uint32
	Value   uint32
}

// MeasureCommandSet describes where one measure lives in the chart's
// backing slices.
type MeasureCommandSet struct {
	Measure       uint32
	CommandCntIdx IndexRange
	CommandsIdx   IndexRange
}

// Chart is a compiled chart. It is built once by Compile and never modified
// afterwards, so one *Chart may be shared by any number of cursors and
// goroutines.
type Chart struct {
	// commandCnt holds the number of commands in each slot.
	commandCnt  []int
	commands    []ChannelCommand
	measureSets []MeasureCommandSet
}

// BarCount returns one past the highest compiled measure, or 0 for an empty
// chart.
func (c *Chart) BarCount() int {
	if len(c.measureSets) == 0 {
		return 0
	}
	return int(c.measureSets[len(c.measureSets)-1].Measure) + 1
}

// Len returns the total number of commands.
func (c *Chart) Len() int {
	return len(c.commands)
}

// SlotCount returns the total number of slots over all measures.
func (c *Chart) SlotCount() int {
	return len(c.commandCnt)
}

// CommandAt returns the command at index i.
func (c *Chart) CommandAt(i int) (ChannelCommand, bool) {
	if i < 0 || i >= len(c.commands) {
		return ChannelCommand{}, false
	}
	return c.commands[i], true
}

// Commands returns the commands addressed by r. The result shares memory
// with the chart and must not be modified.
func (c *Chart) Commands(r IndexRange) []ChannelCommand {
	return c.commands[r.Start:r.End:r.End]
}

// MeasureSets returns a copy of the measure sets in ascending measure order.
func (c *Chart) MeasureSets() []MeasureCommandSet {
	return append([]MeasureCommandSet(nil), c.measureSets...)
}

// CommandCounts returns a copy of the per-slot command counts.
func (c *Chart) CommandCounts() []int {
	return append([]int(nil), c.commandCnt...)
}

// MeasureSet returns the measure set compiled for bar.
func (c *Chart) MeasureSet(bar int) (MeasureCommandSet, error) {
	i, err := c.findSet(bar)
	if err != nil {
		return MeasureCommandSet{}, err
	}
	return c.measureSets[i], nil
}

func (c *Chart) findSet(bar int) (int, error) {
	if bar < 0 || bar >= c.BarCount() {
		return 0, errors.Wrapf(ErrBarOutOfRange, "bar %d of %d", bar, c.BarCount())
	}
	i := sort.Search(len(c.measureSets), func(i int) bool {
		return int(c.measureSets[i].Measure) >= bar
	})
	if i == len(c.measureSets) || int(c.measureSets[i].Measure) != bar {
		return 0, errors.Wrapf(ErrBarIsEmpty, "bar %d", bar)
	}
	return i, nil
}

// Iter returns a cursor over every slot of the chart.
func (c *Chart) Iter() *MeasureCursor {
	return &MeasureCursor{chart: c}
}

// IterFromBar returns a cursor starting at the first slot of bar and running
// to the end of the chart.
func (c *Chart) IterFromBar(bar int) (*MeasureCursor, error) {
	i, err := c.findSet(bar)
	if err != nil {
		return nil, err
	}
	set := c.measureSets[i]
	return &MeasureCursor{
		chart:  c,
		set:    i,
		cntPos: set.CommandCntIdx.Start,
		cmdPos: set.CommandsIdx.Start,
	}, nil
}

package cbms

import (
	"sort"

	"github.com/pkg/errors"
)

// MaxMeasureSlots bounds the slot grid of a single measure. Real charts stay
// far below it; a few long coprime lines in one measure would not.
const MaxMeasureSlots = 1 << 16

// ErrMeasureTooDense is returned by Validate when a measure needs more than
// MaxMeasureSlots slots.
var ErrMeasureTooDense = errors.New("measure too dense")

// ErrArgsOutOfRange is returned by Validate for a set whose range does not
// lie within args.
var ErrArgsOutOfRange = errors.New("argument range out of bounds")

// ChannelCommandSet is one channel line of a chart: the values in
// args[Args.Start:Args.End] are spread evenly over measure Measure.
type ChannelCommandSet struct {
	Measure uint32
	Channel uint32
	Args    IndexRange
}

// Compile quantizes the command sets onto one slot grid per measure and
// packs the result into a Chart. It never fails for input that passes
// Validate; the slot grid of a measure is allocated in full, so unchecked
// input can make it arbitrarily large.
//
// Each measure gets lcm(c1..ck) slots, where ci are the non-zero argument
// counts of its sets. Within a slot, commands keep the order their sets had
// in the input. Measures without any arguments are left out.
func Compile(sets []ChannelCommandSet, args []uint32) *Chart {
	sorted := append([]ChannelCommandSet(nil), sets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Measure < sorted[j].Measure
	})

	c := &Chart{}
	for idx := 0; idx < len(sorted); {
		measure := sorted[idx].Measure
		end := idx + 1
		for end < len(sorted) && sorted[end].Measure == measure {
			end++
		}
		group := sorted[idx:end]
		idx = end

		slots := 0
		for _, s := range group {
			slots = lcm(slots, s.Args.Len())
		}
		if slots == 0 {
			continue
		}

		cntStart, cmdStart := len(c.commandCnt), len(c.commands)
		for i := 0; i < slots; i++ {
			n := 0
			for _, s := range group {
				count := s.Args.Len()
				if count == 0 || i%(slots/count) != 0 {
					continue
				}
				c.commands = append(c.commands, ChannelCommand{
					Channel: s.Channel,
					Value:   args[s.Args.Start+i*count/slots],
				})
				n++
			}
			c.commandCnt = append(c.commandCnt, n)
		}
		c.measureSets = append(c.measureSets, MeasureCommandSet{
			Measure:       measure,
			CommandCntIdx: IndexRange{cntStart, len(c.commandCnt)},
			CommandsIdx:   IndexRange{cmdStart, len(c.commands)},
		})
	}
	return c
}

// Validate checks that every set's range lies within args and that no
// measure needs more than MaxMeasureSlots slots.
func Validate(sets []ChannelCommandSet, args []uint32) error {
	slots := make(map[uint32]int)
	for _, s := range sets {
		if s.Args.Start < 0 || s.Args.End < s.Args.Start || s.Args.End > len(args) {
			return errors.Wrapf(ErrArgsOutOfRange, "measure %d channel %d: [%d, %d) of %d",
				s.Measure, s.Channel, s.Args.Start, s.Args.End, len(args))
		}
		n, ok := boundedLCM(slots[s.Measure], s.Args.Len(), MaxMeasureSlots)
		if !ok {
			return errors.Wrapf(ErrMeasureTooDense, "measure %d needs more than %d slots", s.Measure, MaxMeasureSlots)
		}
		slots[s.Measure] = n
	}
	return nil
}

// boundedLCM is lcm that reports false instead of exceeding limit.
func boundedLCM(a, b, limit int) (int, bool) {
	if a == 0 || b == 0 {
		n := lcm(a, b)
		return n, n <= limit
	}
	f := a / gcd(a, b)
	if f > limit/b {
		return 0, false
	}
	return f * b, true
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// lcm treats zero as "no constraint", so lcm(0, n) == n.
func lcm(a, b int) int {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	return a / gcd(a, b) * b
}

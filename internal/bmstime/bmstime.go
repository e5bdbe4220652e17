// Package bmstime converts between bar-time and absolute time under a tempo
// timeline.
package bmstime

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidTempo is returned for a section whose bpm is not a positive,
	// finite number.
	ErrInvalidTempo = errors.New("invalid tempo")
	// ErrInvalidTimeline is returned when the sections do not form a valid
	// timeline.
	ErrInvalidTimeline = errors.New("invalid timeline")
)

// Time is a position in bar-time. The integer part is the bar number and the
// fractional part is the linear progress through that bar.
type Time float64

// Bar returns the bar number of t.
func (t Time) Bar() int {
	return int(math.Floor(float64(t)))
}

// Prog returns the progress through the bar, in [0,1).
func (t Time) Prog() float64 {
	return float64(t) - math.Floor(float64(t))
}

// Float64 returns t as a raw real number.
func (t Time) Float64() float64 {
	return float64(t)
}

// Section is one tempo section of a timeline.
type Section struct {
	Start       Time
	BPM         float64
	BeatsPerBar int
}

// secondsPerBar is the wall-clock length of one bar in this section.
func (s Section) secondsPerBar() float64 {
	return float64(s.BeatsPerBar) * 60 / s.BPM
}

// Timings is an immutable tempo timeline. The first section starts at bar 0
// and the last one extends forever.
type Timings struct {
	sections []Section
}

// NewTimings validates sections and builds a timeline from them.
func NewTimings(sections ...Section) (*Timings, error) {
	if len(sections) == 0 {
		return nil, errors.Wrap(ErrInvalidTimeline, "no sections")
	}
	if sections[0].Start != 0 {
		return nil, errors.Wrapf(ErrInvalidTimeline, "first section starts at bar %v", float64(sections[0].Start))
	}
	for i, s := range sections {
		if s.BPM <= 0 || math.IsNaN(s.BPM) || math.IsInf(s.BPM, 0) {
			return nil, errors.Wrapf(ErrInvalidTempo, "section %d: bpm %v", i, s.BPM)
		}
		if s.BeatsPerBar <= 0 {
			return nil, errors.Wrapf(ErrInvalidTimeline, "section %d: %d beats per bar", i, s.BeatsPerBar)
		}
		if i > 0 && s.Start <= sections[i-1].Start {
			return nil, errors.Wrapf(ErrInvalidTimeline, "section %d starts at bar %v, not after %v",
				i, float64(s.Start), float64(sections[i-1].Start))
		}
	}
	return &Timings{sections: append([]Section(nil), sections...)}, nil
}

// SingleTempo builds a timeline with one section starting at bar 0.
func SingleTempo(bpm float64, beatsPerBar int) (*Timings, error) {
	return NewTimings(Section{Start: 0, BPM: bpm, BeatsPerBar: beatsPerBar})
}

// Len returns the number of sections.
func (tl *Timings) Len() int {
	return len(tl.sections)
}

// Section returns the i-th section.
func (tl *Timings) Section(i int) Section {
	return tl.sections[i]
}

// Sections returns a copy of the sections.
func (tl *Timings) Sections() []Section {
	return append([]Section(nil), tl.sections...)
}

// length returns the bar length of section i and whether it is bounded.
func (tl *Timings) length(i int) (Time, bool) {
	if i+1 >= len(tl.sections) {
		return 0, false
	}
	return tl.sections[i+1].Start - tl.sections[i].Start, true
}

// FromAbsoluteTime converts elapsed seconds into bar-time. The walk always
// starts at the first section.
func FromAbsoluteTime(elapsed float64, tl *Timings) Time {
	var bar Time
	for i, s := range tl.sections {
		length, bounded := tl.length(i)
		if bounded {
			duration := float64(length) * s.secondsPerBar()
			if elapsed > duration {
				elapsed -= duration
				bar += length
				continue
			}
		}
		bar += Time(elapsed * s.BPM / 60 / float64(s.BeatsPerBar))
		break
	}
	return bar
}

// Hint caches where a previous ToAbsoluteTime call resolved so that the next
// call can skip the sections before it. The zero value is not a usable hint;
// pass nil instead.
//
// A hint is only valid for a query whose bar is not smaller than the bar that
// produced it, on the same timeline. Reusing it for an earlier bar yields a
// wrong result because the walk never moves backwards; callers issuing
// out-of-order queries must pass nil. A hint from another timeline is ignored.
type Hint struct {
	timings *Timings
	section int
	// elapsed seconds at the start of section.
	elapsed float64
}

// Section returns the index of the section the hint resolved in.
func (h Hint) Section() int {
	return h.section
}

// ToAbsoluteTime converts t into elapsed seconds. It also returns a hint for
// the next, non-decreasing query against tl.
func (t Time) ToAbsoluteTime(tl *Timings, hint *Hint) (float64, Hint) {
	idx := 0
	elapsed := 0.0
	if hint != nil && hint.timings == tl && hint.section < len(tl.sections) {
		idx = hint.section
		elapsed = hint.elapsed
	}
	remaining := t - tl.sections[idx].Start
	for ; idx < len(tl.sections); idx++ {
		s := tl.sections[idx]
		length, bounded := tl.length(idx)
		if bounded && length < remaining {
			remaining -= length
			elapsed += float64(length) * s.secondsPerBar()
			continue
		}
		return elapsed + float64(remaining)*s.secondsPerBar(), Hint{timings: tl, section: idx, elapsed: elapsed}
	}
	// unreachable: the last section is unbounded
	return elapsed, Hint{timings: tl, section: len(tl.sections) - 1, elapsed: elapsed}
}

// AbsoluteTime converts t into elapsed seconds without a hint.
func (t Time) AbsoluteTime(tl *Timings) float64 {
	secs, _ := t.ToAbsoluteTime(tl, nil)
	return secs
}

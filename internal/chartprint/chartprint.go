// Package chartprint renders compiled charts as plain text.
package chartprint

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/hako/durafmt"

	"bms-hero/internal/bmsparse"
	"bms-hero/internal/bmstime"
	"bms-hero/internal/cbms"
)

var shortUnits = mustUnits("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

func mustUnits(s string) durafmt.Units {
	u, err := durafmt.DefaultUnitsCoder.Decode(s)
	if err != nil {
		panic(fmt.Sprintf("chartprint: bad duration units %q: %v", s, err))
	}
	return u
}

// PrintBar writes one bar as a grid with a column per channel in
// [firstChannel, firstChannel+channels). The last slot is printed first so
// the bar reads bottom-up like a scrolling lane. Zero values print as empty
// cells.
func PrintBar(w io.Writer, chart *cbms.Chart, bar int, firstChannel, channels uint32) error {
	set, err := chart.MeasureSet(bar)
	if err != nil {
		return err
	}
	it, err := chart.IterFromBar(bar)
	if err != nil {
		return err
	}

	slots := set.CommandCntIdx.Len()
	grid := make([]uint32, slots*int(channels))
	for s, ok := it.Next(); ok && s.Measure == set.Measure; s, ok = it.Next() {
		line := int(math.Round(s.Progress * float64(slots)))
		for _, cmd := range chart.Commands(s.Commands) {
			if cmd.Channel < firstChannel || cmd.Channel >= firstChannel+channels {
				continue
			}
			grid[line*int(channels)+int(cmd.Channel-firstChannel)] = cmd.Value
		}
	}

	bw := bufio.NewWriter(w)
	var sb strings.Builder
	for line := slots - 1; line >= 0; line-- {
		sb.Reset()
		sb.WriteByte('|')
		for _, v := range grid[line*int(channels) : (line+1)*int(channels)] {
			if v == 0 {
				sb.WriteString("....|")
			} else {
				fmt.Fprintf(&sb, "%04d|", v)
			}
		}
		fmt.Fprintln(bw, sb.String())
	}
	fmt.Fprintln(bw, "-"+strings.Repeat("-----", int(channels)))
	sb.Reset()
	sb.WriteByte('|')
	for ch := firstChannel; ch < firstChannel+channels; ch++ {
		fmt.Fprintf(&sb, "%04d|", ch)
	}
	fmt.Fprintln(bw, sb.String())
	return bw.Flush()
}

// PrintTimed writes every non-zero command with its absolute time, in
// playback order.
func PrintTimed(w io.Writer, chart *cbms.Chart, tl *bmstime.Timings) error {
	bw := bufio.NewWriter(w)
	var hint *bmstime.Hint
	for tc := range chart.Iter().Flatten().All() {
		cmd, _ := chart.CommandAt(tc.Index)
		if cmd.Value == 0 {
			continue
		}
		secs, next := tc.Time.ToAbsoluteTime(tl, hint)
		hint = &next
		fmt.Fprintf(bw, "%012.6f: [%d] %d\n", secs, cmd.Channel, cmd.Value)
	}
	return bw.Flush()
}

// PrintResources writes the #WAVxx resource table, one entry per line.
func PrintResources(w io.Writer, res []bmsparse.Resource) error {
	bw := bufio.NewWriter(w)
	for _, r := range res {
		fmt.Fprintf(bw, "Resource no. %04d: %s\n", r.Index, r.Path)
	}
	return bw.Flush()
}

// Length returns the absolute time of the end of the chart's last bar.
func Length(chart *cbms.Chart, tl *bmstime.Timings) float64 {
	return bmstime.Time(chart.BarCount()).AbsoluteTime(tl)
}

// Duration formats seconds as a short human readable duration.
func Duration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Millisecond)
	if d == 0 {
		return "0s"
	}
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}

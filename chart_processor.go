package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"bms-hero/internal/bmsparse"
	"bms-hero/internal/bmstime"
	"bms-hero/internal/cbms"
	"bms-hero/internal/chartapi"
	"bms-hero/internal/chartprint"
)

// ChartProcessor loads a chart file and turns it into playable notes
type ChartProcessor struct {
	filePath string
	imported *bmsparse.Imported
	chart    *cbms.Chart
	timings  *bmstime.Timings
}

// ChartNote is one non-zero command placed in time
type ChartNote struct {
	Time    float64      // seconds from bar 0
	Bar     bmstime.Time // position in bars
	Channel uint32
	Value   uint32
	Lane    int // game lane, -1 when the channel is not played
}

// NewChartProcessor creates a new chart processor instance
func NewChartProcessor() *ChartProcessor {
	return &ChartProcessor{}
}

// LoadChart parses and compiles the chart at filePath
func (cp *ChartProcessor) LoadChart(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return errors.Wrap(err, "chart file not found")
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return errors.Wrap(err, "failed to get absolute path")
	}
	cp.filePath = absPath
	fmt.Printf("Loading chart: %s (%s)\n", cp.filePath, humanize.Bytes(uint64(info.Size())))

	im, err := bmsparse.ImportFile(absPath)
	if err != nil {
		return err
	}
	tl, err := im.Timings()
	if err != nil {
		return errors.Wrap(err, "invalid chart tempo")
	}
	if im.Skipped > 0 {
		logDebug("%s: %d unsupported statements skipped", filepath.Base(absPath), im.Skipped)
	}

	cp.imported = im
	cp.timings = tl
	cp.chart = im.Compile()

	fmt.Printf("Compiled %d bars, %d commands in %d slots, length %s\n",
		cp.chart.BarCount(), cp.chart.Len(), cp.chart.SlotCount(),
		chartprint.Duration(chartprint.Length(cp.chart, cp.timings)))
	return nil
}

// Chart returns the compiled chart
func (cp *ChartProcessor) Chart() *cbms.Chart {
	return cp.chart
}

// Timings returns the chart's tempo timeline
func (cp *ChartProcessor) Timings() *bmstime.Timings {
	return cp.timings
}

// Meta returns the chart's header fields
func (cp *ChartProcessor) Meta() chartapi.Meta {
	return chartapi.Meta{
		Title:  cp.imported.Title,
		Artist: cp.imported.Artist,
		Genre:  cp.imported.Genre,
		BPM:    cp.imported.BPM,
	}
}

// Resources returns the chart's #WAVxx table ordered by index
func (cp *ChartProcessor) Resources() []bmsparse.Resource {
	return cp.imported.Resources()
}

// Length returns the chart length in seconds
func (cp *ChartProcessor) Length() float64 {
	return chartprint.Length(cp.chart, cp.timings)
}

// Notes returns every non-zero command in playback order. lanes maps a
// channel to its game lane; commands on other channels get Lane -1.
func (cp *ChartProcessor) Notes(lanes map[uint32]int) ([]ChartNote, error) {
	if cp.chart == nil {
		return nil, errors.New("no chart loaded")
	}
	notes := make([]ChartNote, 0, cp.chart.Len())
	var hint *bmstime.Hint
	for tc := range cp.chart.Iter().Flatten().All() {
		cmd, _ := cp.chart.CommandAt(tc.Index)
		if cmd.Value == 0 {
			continue
		}
		secs, next := tc.Time.ToAbsoluteTime(cp.timings, hint)
		hint = &next

		lane, ok := lanes[cmd.Channel]
		if !ok {
			lane = -1
		}
		notes = append(notes, ChartNote{
			Time:    secs,
			Bar:     tc.Time,
			Channel: cmd.Channel,
			Value:   cmd.Value,
			Lane:    lane,
		})
	}
	return notes, nil
}

// BarAt returns the bar playing at seconds from bar 0
func (cp *ChartProcessor) BarAt(seconds float64) int {
	return bmstime.FromAbsoluteTime(seconds, cp.timings).Bar()
}

package bmsparse

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/japanese"

	"bms-hero/internal/bmstime"
	"bms-hero/internal/cbms"
)

const sampleChart = `
*---------------------- HEADER FIELD
#PLAYER 1
#GENRE Test
#TITLE Sample Song
#ARTIST nobody
#BPM 150
#WAV01 kick.wav
#WAVzz snare.wav
#RANDOM 2
#IF 1
#ENDIF

*---------------------- MAIN DATA FIELD
#00311:0A14
#00312:1E2832
#00516:
#00611:0
`

func TestImport(t *testing.T) {
	im, err := Import(strings.NewReader(sampleChart))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if im.Title != "Sample Song" || im.Artist != "nobody" || im.Genre != "Test" {
		t.Fatalf("headers = %q %q %q", im.Title, im.Artist, im.Genre)
	}
	if im.BPM != 150 {
		t.Fatalf("BPM = %v, want 150", im.BPM)
	}
	if p, ok := im.Resource(1); !ok || p != "kick.wav" {
		t.Fatalf("resource 1 = %q %v", p, ok)
	}
	if p, ok := im.Resource(36*35 + 35); !ok || p != "snare.wav" {
		t.Fatalf("resource zz = %q %v", p, ok)
	}
	if im.ResourceCount() != 2 {
		t.Fatalf("ResourceCount = %d, want 2", im.ResourceCount())
	}
	wantRes := []Resource{{1, "kick.wav"}, {36*35 + 35, "snare.wav"}}
	if res := im.Resources(); !reflect.DeepEqual(res, wantRes) {
		t.Fatalf("Resources = %v, want %v", res, wantRes)
	}
	if im.Skipped != 4 {
		t.Fatalf("Skipped = %d, want 4", im.Skipped)
	}

	wantArgs := []uint32{10, 40, 50, 80, 110}
	if !reflect.DeepEqual(im.Args, wantArgs) {
		t.Fatalf("args = %v, want %v", im.Args, wantArgs)
	}
	wantSets := []cbms.ChannelCommandSet{
		{Measure: 3, Channel: 11, Args: cbms.IndexRange{Start: 0, End: 2}},
		{Measure: 3, Channel: 12, Args: cbms.IndexRange{Start: 2, End: 5}},
		{Measure: 5, Channel: 16, Args: cbms.IndexRange{Start: 5, End: 5}},
		{Measure: 6, Channel: 11, Args: cbms.IndexRange{Start: 5, End: 5}},
	}
	if !reflect.DeepEqual(im.Sets, wantSets) {
		t.Fatalf("sets = %+v, want %+v", im.Sets, wantSets)
	}
}

func TestImportAndCompile(t *testing.T) {
	im, err := Import(strings.NewReader(sampleChart))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	c := im.Compile()
	if c.BarCount() != 4 {
		t.Fatalf("BarCount = %d, want 4 (measures 5 and 6 are empty)", c.BarCount())
	}
	if got, want := c.CommandCounts(), []int{2, 0, 1, 1, 1, 0}; !reflect.DeepEqual(got, want) {
		t.Fatalf("command_cnt = %v, want %v", got, want)
	}
	if _, err := c.IterFromBar(5); !errors.Is(err, cbms.ErrBarOutOfRange) {
		t.Fatalf("IterFromBar(5) err = %v", err)
	}

	tl, err := im.Timings()
	if err != nil {
		t.Fatalf("Timings: %v", err)
	}
	if tl.Len() != 1 || tl.Section(0) != (bmstime.Section{Start: 0, BPM: 150, BeatsPerBar: BeatsPerBar}) {
		t.Fatalf("timings = %+v", tl.Sections())
	}
}

func TestImportDefaultsAndInvalidTempo(t *testing.T) {
	im, err := Import(strings.NewReader("#00111:01\n"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if im.BPM != DefaultBPM {
		t.Fatalf("BPM = %v, want %v", im.BPM, DefaultBPM)
	}

	im, err = Import(strings.NewReader("#BPM 0\n#00111:01\n"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if _, err := im.Timings(); !errors.Is(err, bmstime.ErrInvalidTempo) {
		t.Fatalf("Timings err = %v, want ErrInvalidTempo", err)
	}
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"bad base36", "#TITLE x\n#00111:01-2\n", ErrInvalidBase36},
		{"bad bpm", "#BPM fast\n", ErrNumericFormat},
	}
	for _, tt := range tests {
		_, err := Import(strings.NewReader(tt.input))
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
		if err != nil && !strings.Contains(err.Error(), "line 2") && tt.name == "bad base36" {
			t.Errorf("%s: error %q does not name the line", tt.name, err)
		}
	}
}

func TestImportRejectsDenseMeasure(t *testing.T) {
	var sb strings.Builder
	for i, n := range []int{2, 3, 5, 7, 11, 13, 17} {
		fmt.Fprintf(&sb, "#0001%d:%s\n", i+1, strings.Repeat("01", n))
	}
	if _, err := Import(strings.NewReader(sb.String())); !errors.Is(err, cbms.ErrMeasureTooDense) {
		t.Fatalf("err = %v, want ErrMeasureTooDense", err)
	}
}

func TestImportShiftJIS(t *testing.T) {
	title, err := japanese.ShiftJIS.NewEncoder().String("曲名")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	im, err := Import(strings.NewReader("#TITLE " + title + "\r\n#00111:01\r\n"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if im.Title != "曲名" {
		t.Fatalf("Title = %q, want 曲名", im.Title)
	}
	if len(im.Sets) != 1 {
		t.Fatalf("got %d sets, want 1", len(im.Sets))
	}
}

func TestImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.bms")
	if err := os.WriteFile(path, []byte(sampleChart), 0o644); err != nil {
		t.Fatal(err)
	}
	im, err := ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if im.Title != "Sample Song" {
		t.Fatalf("Title = %q", im.Title)
	}
	if _, err := ImportFile(filepath.Join(t.TempDir(), "missing.bms")); err == nil {
		t.Fatalf("ImportFile of a missing file succeeded")
	}
}

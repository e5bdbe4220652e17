package chartprint

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"bms-hero/internal/bmsparse"
	"bms-hero/internal/bmstime"
	"bms-hero/internal/cbms"
)

func sampleChart() *cbms.Chart {
	args := []uint32{10, 20, 30, 40, 50, 0, 7}
	return cbms.Compile([]cbms.ChannelCommandSet{
		{Measure: 0, Channel: 1, Args: cbms.IndexRange{Start: 0, End: 2}},
		{Measure: 0, Channel: 2, Args: cbms.IndexRange{Start: 2, End: 5}},
		{Measure: 2, Channel: 1, Args: cbms.IndexRange{Start: 5, End: 7}},
	}, args)
}

func TestPrintBar(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintBar(&buf, sampleChart(), 0, 1, 2); err != nil {
		t.Fatalf("PrintBar: %v", err)
	}
	want := strings.Join([]string{
		"|....|....|",
		"|....|0050|",
		"|0020|....|",
		"|....|0040|",
		"|....|....|",
		"|0010|0030|",
		"-----------",
		"|0001|0002|",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("PrintBar output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrintBarStopsAtBarEnd(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintBar(&buf, sampleChart(), 2, 1, 1); err != nil {
		t.Fatalf("PrintBar: %v", err)
	}
	want := "|0007|\n|....|\n------\n|0001|\n"
	if buf.String() != want {
		t.Fatalf("PrintBar output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrintBarErrors(t *testing.T) {
	c := sampleChart()
	if err := PrintBar(&bytes.Buffer{}, c, 1, 1, 2); !errors.Is(err, cbms.ErrBarIsEmpty) {
		t.Fatalf("bar 1 err = %v, want ErrBarIsEmpty", err)
	}
	if err := PrintBar(&bytes.Buffer{}, c, 3, 1, 2); !errors.Is(err, cbms.ErrBarOutOfRange) {
		t.Fatalf("bar 3 err = %v, want ErrBarOutOfRange", err)
	}
}

func TestPrintTimed(t *testing.T) {
	tl, err := bmstime.SingleTempo(120, 4)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := PrintTimed(&buf, sampleChart(), tl); err != nil {
		t.Fatalf("PrintTimed: %v", err)
	}
	want := strings.Join([]string{
		"00000.000000: [1] 10",
		"00000.000000: [2] 30",
		"00000.666667: [2] 40",
		"00001.000000: [1] 20",
		"00001.333333: [2] 50",
		"00005.000000: [1] 7",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("PrintTimed output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrintResources(t *testing.T) {
	var buf bytes.Buffer
	res := []bmsparse.Resource{{Index: 1, Path: "kick.wav"}, {Index: 1295, Path: "snare.wav"}}
	if err := PrintResources(&buf, res); err != nil {
		t.Fatalf("PrintResources: %v", err)
	}
	want := "Resource no. 0001: kick.wav\nResource no. 1295: snare.wav\n"
	if buf.String() != want {
		t.Fatalf("PrintResources output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestUnitsDecode(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("mustUnits accepted a malformed unit list")
		}
	}()
	mustUnits("y:yrs")
}

func TestLengthAndDuration(t *testing.T) {
	tl, _ := bmstime.SingleTempo(120, 4)
	if got := Length(sampleChart(), tl); got != 6 {
		t.Fatalf("Length = %v, want 6", got)
	}
	if got := Duration(0); got != "0s" {
		t.Fatalf("Duration(0) = %q", got)
	}
	if got := Duration(90); !strings.Contains(got, "30") {
		t.Fatalf("Duration(90) = %q", got)
	}
}

// Package bmsparse reads BMS chart text into raw channel command sets that
// cbms.Compile turns into a compiled chart.
//
// Only channel lines and a handful of headers are understood. Control-flow
// statements such as #RANDOM or #IF are skipped without evaluation.
package bmsparse

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"bms-hero/internal/bmstime"
	"bms-hero/internal/cbms"
)

const (
	// DefaultBPM is used when a chart has no #BPM header.
	DefaultBPM = 130.0
	// BeatsPerBar is the meter every imported chart is timed with.
	BeatsPerBar = 4
)

var (
	// ErrInvalidBase36 is returned for a channel value that is not a pair of
	// base-36 digits.
	ErrInvalidBase36 = errors.New("invalid base36 value")
	// ErrNumericFormat is returned for a malformed decimal header value.
	ErrNumericFormat = errors.New("invalid number")
)

var channelLine = regexp.MustCompile(`^#(?P<measure>[0-9]{3})(?P<channel>[0-9]{2}):(?P<values>\S*)$`)

// Imported is a parsed chart: every channel line in file order plus the
// values they reference, and the header fields.
type Imported struct {
	Title  string
	Artist string
	Genre  string
	BPM    float64

	// Sets reference Args by index range.
	Sets []cbms.ChannelCommandSet
	Args []uint32

	resources map[int]string
	// Skipped counts # statements that were not evaluated.
	Skipped int
}

// Resource returns the path registered with #WAVxx for index i.
func (im *Imported) Resource(i int) (string, bool) {
	p, ok := im.resources[i]
	return p, ok
}

// ResourceCount returns the number of registered resources.
func (im *Imported) ResourceCount() int {
	return len(im.resources)
}

// Resource is one #WAVxx entry.
type Resource struct {
	Index int
	Path  string
}

// Resources returns the resource table ordered by index.
func (im *Imported) Resources() []Resource {
	out := make([]Resource, 0, len(im.resources))
	for i, p := range im.resources {
		out = append(out, Resource{Index: i, Path: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Compile compiles the channel command sets.
func (im *Imported) Compile() *cbms.Chart {
	return cbms.Compile(im.Sets, im.Args)
}

// Timings returns the tempo timeline of the chart. Only the global #BPM is
// honoured, so the timeline always has exactly one section.
func (im *Imported) Timings() (*bmstime.Timings, error) {
	return bmstime.SingleTempo(im.BPM, BeatsPerBar)
}

// ImportFile reads and parses the chart at path.
func ImportFile(path string) (*Imported, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open chart")
	}
	defer f.Close()
	im, err := Import(f)
	if err != nil {
		return nil, errors.Wrapf(err, "import %s", path)
	}
	return im, nil
}

// Import parses chart text from r. Text that is not valid UTF-8 is decoded
// as Shift-JIS.
func Import(r io.Reader) (*Imported, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "error reading chart")
	}
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, japanese.ShiftJIS.NewDecoder())
	}

	im := &Imported{BPM: DefaultBPM, resources: make(map[int]string)}
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for n := 1; sc.Scan(); n++ {
		if err := im.parseLine(strings.TrimSpace(sc.Text())); err != nil {
			return nil, errors.Wrapf(err, "line %d", n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading chart")
	}
	if err := cbms.Validate(im.Sets, im.Args); err != nil {
		return nil, err
	}
	return im, nil
}

func (im *Imported) parseLine(line string) error {
	if !strings.HasPrefix(line, "#") {
		return nil
	}
	if m := channelLine.FindStringSubmatch(line); m != nil {
		return im.parseChannel(m[1], m[2], m[3])
	}
	key, value := line[1:], ""
	if i := strings.IndexFunc(key, unicode.IsSpace); i >= 0 {
		key, value = key[:i], strings.TrimSpace(key[i+1:])
	}
	key = strings.ToUpper(key)
	switch {
	case key == "TITLE":
		im.Title = value
	case key == "ARTIST":
		im.Artist = value
	case key == "GENRE":
		im.Genre = value
	case key == "BPM":
		bpm, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.Wrapf(ErrNumericFormat, "#BPM %q", value)
		}
		im.BPM = bpm
	case len(key) == 5 && strings.HasPrefix(key, "WAV"):
		i, err := parseBase36(key[3:])
		if err != nil {
			return errors.Wrapf(err, "#%s", key)
		}
		im.resources[int(i)] = value
	default:
		im.Skipped++
	}
	return nil
}

func (im *Imported) parseChannel(measureStr, channelStr, values string) error {
	measure, err := strconv.ParseUint(measureStr, 10, 32)
	if err != nil {
		return errors.Wrapf(ErrNumericFormat, "measure %q", measureStr)
	}
	channel, err := strconv.ParseUint(channelStr, 10, 32)
	if err != nil {
		return errors.Wrapf(ErrNumericFormat, "channel %q", channelStr)
	}
	start := len(im.Args)
	// a trailing odd character is dropped
	for i := 0; i+1 < len(values); i += 2 {
		v, err := parseBase36(values[i : i+2])
		if err != nil {
			im.Args = im.Args[:start]
			return errors.Wrapf(err, "channel %s%s", measureStr, channelStr)
		}
		im.Args = append(im.Args, v)
	}
	im.Sets = append(im.Sets, cbms.ChannelCommandSet{
		Measure: uint32(measure),
		Channel: uint32(channel),
		Args:    cbms.IndexRange{Start: start, End: len(im.Args)},
	})
	return nil
}

func parseBase36(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 36, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidBase36, "%q", s)
	}
	return uint32(v), nil
}

package main

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"
)

const blipDuration = 0.06 // seconds

// AudioManager plays a short blip for every chart note
type AudioManager struct {
	sampleRate    beep.SampleRate
	isInitialized bool
	isPlaying     bool
	isPaused      bool
	volume        float64

	chartStream *ChartStreamer
	ctrl        *beep.Ctrl
	currentTime float64
	startTime   time.Time
	pausedAt    time.Time
}

type blip struct {
	start int    // sample position
	freq  float64
	gain  float64
	pan   float64 // 0 = left, 1 = right
}

// ChartStreamer renders note blips at their sample positions
type ChartStreamer struct {
	blips      []blip
	sampleRate beep.SampleRate
	length     int // samples per blip
	position   int
	next       int   // first blip not yet started
	active     []int // indices of sounding blips
}

// NewAudioManager creates a new audio manager
func NewAudioManager(volume float64) *AudioManager {
	am := &AudioManager{sampleRate: beep.SampleRate(44100)}
	am.SetVolume(volume)
	return am
}

// Initialize sets up the audio system
func (am *AudioManager) Initialize() error {
	// Small buffer for low latency
	if err := speaker.Init(am.sampleRate, am.sampleRate.N(time.Second/20)); err != nil {
		return errors.Wrap(err, "failed to initialize speaker")
	}
	am.isInitialized = true
	logDebug("audio initialized at %d Hz", am.sampleRate)
	return nil
}

// LoadChart prepares blips for notes, delayed by offset seconds
func (am *AudioManager) LoadChart(notes []ChartNote, offset float64) error {
	if !am.isInitialized {
		return errors.New("audio manager not initialized")
	}
	am.chartStream = newChartStreamer(notes, offset, am.sampleRate)
	fmt.Printf("Loaded %d notes for audio preview\n", len(am.chartStream.blips))
	return nil
}

func newChartStreamer(notes []ChartNote, offset float64, sr beep.SampleRate) *ChartStreamer {
	cs := &ChartStreamer{
		sampleRate: sr,
		length:     sr.N(time.Duration(blipDuration * float64(time.Second))),
		blips:      make([]blip, 0, len(notes)),
	}
	for _, note := range notes {
		b := blip{
			start: sr.N(time.Duration((note.Time + offset) * float64(time.Second))),
			gain:  0.25,
			pan:   0.5,
		}
		if note.Lane >= 0 {
			// Played lanes step up a major scale from C5.
			b.freq = noteFrequency(72 + majorScale(note.Lane))
			b.pan = 0.2 + 0.1*float64(note.Lane%7)
		} else {
			// Background and other channels as a quiet low tick keyed by value.
			b.freq = noteFrequency(48 + int(note.Value%24))
			b.gain = 0.1
		}
		cs.blips = append(cs.blips, b)
	}
	sort.SliceStable(cs.blips, func(i, j int) bool { return cs.blips[i].start < cs.blips[j].start })
	return cs
}

// StartPlayback begins audio playback
func (am *AudioManager) StartPlayback() error {
	if !am.isInitialized || am.chartStream == nil {
		return errors.New("audio not ready for playback")
	}
	if am.isPlaying {
		return nil
	}

	am.chartStream.reset()
	am.startTime = time.Now()
	am.currentTime = 0
	am.isPaused = false
	am.ctrl = &beep.Ctrl{Streamer: am.chartStream}
	volume := &effects.Volume{
		Streamer: am.ctrl,
		Base:     2,
		Volume:   math.Log2(am.volume),
		Silent:   am.volume == 0,
	}

	speaker.Play(volume)
	am.isPlaying = true
	logDebug("audio playback started, volume %.2f", am.volume)
	return nil
}

// StopPlayback stops audio playback
func (am *AudioManager) StopPlayback() {
	if am.isPlaying {
		speaker.Clear()
		am.isPlaying = false
		am.isPaused = false
		logDebug("audio playback stopped")
	}
}

// Pause holds the stream at its current sample
func (am *AudioManager) Pause() {
	if !am.isPlaying || am.isPaused {
		return
	}
	am.setPaused(true)
	am.pausedAt = time.Now()
	am.isPaused = true
}

// Resume continues a paused stream; the clock skips the paused interval
func (am *AudioManager) Resume() {
	if !am.isPaused {
		return
	}
	am.startTime = am.startTime.Add(time.Since(am.pausedAt))
	am.setPaused(false)
	am.isPaused = false
}

func (am *AudioManager) setPaused(paused bool) {
	if am.ctrl == nil {
		return
	}
	speaker.Lock()
	am.ctrl.Paused = paused
	speaker.Unlock()
}

// Update updates the audio manager state
func (am *AudioManager) Update() {
	if am.isPlaying && !am.isPaused && !am.startTime.IsZero() {
		am.currentTime = time.Since(am.startTime).Seconds()
	}
}

// GetCurrentTime returns the current playback time
func (am *AudioManager) GetCurrentTime() float64 {
	return am.currentTime
}

// SetVolume sets the playback volume (0.0 to 1.0)
func (am *AudioManager) SetVolume(volume float64) {
	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	am.volume = volume
}

// IsPlaying returns whether audio is currently playing
func (am *AudioManager) IsPlaying() bool {
	return am.isPlaying
}

// Cleanup releases audio resources
func (am *AudioManager) Cleanup() {
	am.StopPlayback()
}

func (cs *ChartStreamer) reset() {
	cs.position = 0
	cs.next = 0
	cs.active = cs.active[:0]
}

// Stream implements beep.Streamer
func (cs *ChartStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		for cs.next < len(cs.blips) && cs.blips[cs.next].start <= cs.position {
			cs.active = append(cs.active, cs.next)
			cs.next++
		}

		var left, right float64
		kept := cs.active[:0]
		for _, idx := range cs.active {
			b := cs.blips[idx]
			elapsed := cs.position - b.start
			if elapsed >= cs.length {
				continue
			}
			kept = append(kept, idx)

			t := float64(elapsed) / float64(cs.sampleRate)
			// Linear decay so blips don't click when they end.
			envelope := 1 - float64(elapsed)/float64(cs.length)
			s := b.gain * envelope * math.Sin(2*math.Pi*b.freq*t)
			left += s * (1 - b.pan)
			right += s * b.pan
		}
		cs.active = kept

		samples[i][0] = clamp(left)
		samples[i][1] = clamp(right)
		cs.position++
	}
	return len(samples), true
}

// Err implements beep.Streamer
func (cs *ChartStreamer) Err() error {
	return nil
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func majorScale(step int) int {
	intervals := [7]int{0, 2, 4, 5, 7, 9, 11}
	return 12*(step/7) + intervals[step%7]
}

// noteFrequency converts a MIDI note number to frequency in Hz
func noteFrequency(key int) float64 {
	// A4 (MIDI note 69) = 440 Hz
	return 440.0 * math.Pow(2.0, float64(key-69)/12.0)
}

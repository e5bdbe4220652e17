package main

import (
	"testing"
	"time"

	"github.com/faiface/beep"
)

func TestAudioClockSkipsPause(t *testing.T) {
	am := NewAudioManager(1)
	am.Pause()
	if am.isPaused {
		t.Fatal("paused while not playing")
	}

	am.isPlaying = true
	am.startTime = time.Now().Add(-3 * time.Second)
	am.Update()
	if got := am.GetCurrentTime(); got < 3 || got > 3.5 {
		t.Fatalf("clock = %v, want about 3s", got)
	}

	am.Pause()
	am.pausedAt = am.pausedAt.Add(-2 * time.Second)
	am.Update()
	frozen := am.GetCurrentTime()
	am.Resume()
	am.Update()
	if got := am.GetCurrentTime(); got < frozen || got > frozen+0.5 {
		t.Fatalf("clock after resume = %v, want about %v", got, frozen)
	}
}

func TestChartStreamerBlips(t *testing.T) {
	notes := []ChartNote{
		{Time: 0.5, Lane: -1, Value: 3},
		{Time: 0, Lane: 0},
	}
	cs := newChartStreamer(notes, 0, beep.SampleRate(1000))
	if cs.length != 60 {
		t.Fatalf("blip length = %d samples, want 60", cs.length)
	}
	if cs.blips[0].start != 0 || cs.blips[1].start != 500 {
		t.Fatalf("blip starts = %d, %d; want 0, 500", cs.blips[0].start, cs.blips[1].start)
	}

	samples := make([][2]float64, 1000)
	if n, ok := cs.Stream(samples); n != 1000 || !ok {
		t.Fatalf("Stream = %d, %v", n, ok)
	}
	if samples[1][0] == 0 || samples[501][0] == 0 {
		t.Fatalf("no sound at blip starts: %v %v", samples[1], samples[501])
	}
	if samples[200] != [2]float64{} || samples[700] != [2]float64{} {
		t.Fatalf("sound between blips: %v %v", samples[200], samples[700])
	}
	if len(cs.active) != 0 {
		t.Fatalf("%d blips still active", len(cs.active))
	}

	cs.reset()
	if cs.position != 0 || cs.next != 0 {
		t.Fatalf("reset left position %d next %d", cs.position, cs.next)
	}
}

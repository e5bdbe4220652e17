package main

import (
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func newTestGame(speed float64, starts ...float64) *Game {
	g := &Game{
		screenWidth:  SCREEN_WIDTH,
		screenHeight: SCREEN_HEIGHT,
		hitLine:      HIT_LINE_Y,
		noteSpeed:    speed,
		state:        StatePlaying,
	}
	for _, s := range starts {
		g.gameNotes = append(g.gameNotes, GameNote{StartTime: s, Height: NOTE_HEIGHT, IsActive: true})
	}
	g.totalNotes = int32(len(g.gameNotes))
	return g
}

func TestFastNotesCountAsMissed(t *testing.T) {
	g := newTestGame(2000, 1)

	// Already below the screen, still inside the hit window.
	g.currentTime = 1.1
	g.updateNotes(0)
	if !g.gameNotes[0].IsActive {
		t.Fatal("unjudged note deactivated while off screen")
	}

	g.currentTime = 1.25
	g.updateNotes(0)
	g.checkMissedNotes()
	if g.missedHits != 1 {
		t.Fatalf("missedHits = %d, want 1", g.missedHits)
	}
	g.checkAllNotesProcessed()
	if !g.IsGameOver() {
		t.Fatalf("state = %v, want game over", g.state)
	}

	g.updateNotes(0)
	if g.gameNotes[0].IsActive {
		t.Fatal("missed note off screen is still active")
	}
}

func TestMissedNoteScrollsBeforeVanishing(t *testing.T) {
	g := newTestGame(NOTE_SPEED, 1)
	g.currentTime = 1.25
	g.checkMissedNotes()
	g.updateNotes(0)
	if !g.gameNotes[0].IsActive {
		t.Fatal("missed note vanished while still on screen")
	}
}

func TestHitNoteVanishes(t *testing.T) {
	g := newTestGame(NOTE_SPEED, 1)
	g.currentTime = 0.98
	g.handleKeyPress(0)
	if g.perfectHits != 1 || g.combo != 1 || g.score != 100 {
		t.Fatalf("perfect=%d combo=%d score=%d", g.perfectHits, g.combo, g.score)
	}
	g.updateNotes(0)
	if g.gameNotes[0].IsActive {
		t.Fatal("hit note still active")
	}
}

func TestCalculateAccuracy(t *testing.T) {
	g := &Game{}
	tests := []struct {
		diff float64
		want HitAccuracy
	}{
		{0, Perfect},
		{-0.04, Perfect},
		{0.08, Good},
		{-0.12, OK},
		{0.3, Miss},
	}
	for _, tt := range tests {
		if got := g.calculateAccuracy(tt.diff); got != tt.want {
			t.Errorf("calculateAccuracy(%v) = %v, want %v", tt.diff, got, tt.want)
		}
	}
}

func TestTogglePause(t *testing.T) {
	g := newTestGame(NOTE_SPEED)
	g.gameStartTime = time.Now().Add(-5 * time.Second)
	start := g.gameStartTime

	g.TogglePause()
	if !g.IsPaused() {
		t.Fatalf("state = %v, want paused", g.state)
	}
	g.Update(0)
	if g.currentTime != 0 {
		t.Fatalf("paused game advanced to %v", g.currentTime)
	}

	g.pausedAt = g.pausedAt.Add(-2 * time.Second)
	g.TogglePause()
	if !g.IsPlaying() {
		t.Fatalf("state = %v, want playing", g.state)
	}
	if shift := g.gameStartTime.Sub(start); shift < 2*time.Second || shift > 3*time.Second {
		t.Fatalf("clock shifted by %v, want about 2s", shift)
	}

	g.state = StateMenu
	g.TogglePause()
	if g.state != StateMenu {
		t.Fatalf("menu toggled to %v", g.state)
	}
}

func TestKeyCode(t *testing.T) {
	tests := []struct {
		name string
		want int32
		ok   bool
	}{
		{"s", rl.KeyS, true},
		{"L", rl.KeyL, true},
		{"7", rl.KeySeven, true},
		{" space ", rl.KeySpace, true},
		{"LEFT_SHIFT", rl.KeyLeftShift, true},
		{"F13", 0, false},
	}
	for _, tt := range tests {
		got, ok := keyCode(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("keyCode(%q) = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

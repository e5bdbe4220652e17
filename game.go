package main

import (
	"fmt"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// GameState represents the current state of the game
type GameState int

const (
	StateMenu GameState = iota
	StatePlaying
	StatePaused
	StateGameOver
)

// Game represents the main game state
type Game struct {
	screenWidth    int32
	screenHeight   int32
	title          string
	chartProcessor *ChartProcessor
	audioManager   *AudioManager
	gameNotes      []GameNote
	score          int32
	combo          int32
	maxCombo       int32
	state          GameState
	gameStartTime  time.Time
	pausedAt       time.Time
	currentTime    float64
	songDuration   float64
	leadIn         float64
	noteSpeed      float64
	hitLine        float32 // Y position of the hit line
	lanes          []Lane

	// Statistics
	perfectHits int32
	goodHits    int32
	okHits      int32
	missedHits  int32
	totalNotes  int32
}

// GameNote represents a note in the game
type GameNote struct {
	StartTime   float64 // seconds from game start, lead-in included
	Lane        int
	Bar         int
	Y           float32 // Current Y position on screen
	Width       float32
	Height      float32
	IsActive    bool
	IsHit       bool
	HitAccuracy HitAccuracy
}

// Lane is one playable column bound to a chart channel
type Lane struct {
	X         float32
	Width     float32
	IsPressed bool
	KeyCode   int32
	Label     string
	Channel   uint32
}

// HitAccuracy represents how accurate a hit was
type HitAccuracy int

const (
	Miss HitAccuracy = iota
	OK
	Good
	Perfect
)

func (a HitAccuracy) String() string {
	switch a {
	case Perfect:
		return "Perfect"
	case Good:
		return "Good"
	case OK:
		return "OK"
	}
	return "Miss"
}

// Game constants
const (
	SCREEN_WIDTH   = 800
	SCREEN_HEIGHT  = 600
	MAX_LANE_WIDTH = 100
	NOTE_HEIGHT    = 16
	HIT_LINE_Y     = 500
	NOTE_SPEED     = 400 // pixels per second
	COUNTDOWN_TIME = 2.0 // seconds before bar 0 reaches the hit line
	HIT_WINDOW     = 0.2 // notes later than this are missed
)

var namedKeys = map[string]int32{
	"SPACE":         rl.KeySpace,
	"LEFT_SHIFT":    rl.KeyLeftShift,
	"RIGHT_SHIFT":   rl.KeyRightShift,
	"LEFT_CONTROL":  rl.KeyLeftControl,
	"RIGHT_CONTROL": rl.KeyRightControl,
	"LEFT_ALT":      rl.KeyLeftAlt,
	"RIGHT_ALT":     rl.KeyRightAlt,
	"TAB":           rl.KeyTab,
	"ENTER":         rl.KeyEnter,
	"LEFT":          rl.KeyLeft,
	"RIGHT":         rl.KeyRight,
	"UP":            rl.KeyUp,
	"DOWN":          rl.KeyDown,
	"COMMA":         rl.KeyComma,
	"PERIOD":        rl.KeyPeriod,
	"SLASH":         rl.KeySlash,
	"SEMICOLON":     rl.KeySemicolon,
}

// keyCode resolves a config key name to a raylib key code.
func keyCode(name string) (int32, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if len(name) == 1 {
		switch c := name[0]; {
		case c >= 'A' && c <= 'Z':
			return int32(rl.KeyA) + int32(c-'A'), true
		case c >= '0' && c <= '9':
			return int32(rl.KeyZero) + int32(c-'0'), true
		}
	}
	code, ok := namedKeys[name]
	return code, ok
}

// NewGame creates a new game instance
func NewGame(cfg Config) *Game {
	audioManager := NewAudioManager(cfg.Volume)
	if err := audioManager.Initialize(); err != nil {
		logWarn("failed to initialize audio: %v", err)
		// Continue without audio
	}

	game := &Game{
		screenWidth:  cfg.Window.Width,
		screenHeight: cfg.Window.Height,
		audioManager: audioManager,
		hitLine:      float32(cfg.Window.Height) - float32(SCREEN_HEIGHT-HIT_LINE_Y),
		state:        StateMenu,
		leadIn:       cfg.LeadIn,
		noteSpeed:    cfg.NoteSpeed,
	}
	game.layoutLanes(cfg.Lanes)
	return game
}

// layoutLanes centres the configured lanes on screen
func (g *Game) layoutLanes(lanes []LaneConfig) {
	g.lanes = g.lanes[:0]
	if len(lanes) == 0 {
		return
	}
	width := float32(g.screenWidth-200) / float32(len(lanes))
	if width > MAX_LANE_WIDTH {
		width = MAX_LANE_WIDTH
	}
	left := (float32(g.screenWidth) - width*float32(len(lanes))) / 2
	for i, lc := range lanes {
		code, ok := keyCode(lc.Key)
		if !ok {
			logWarn("lane %d: unknown key %q, lane has no key", i, lc.Key)
		}
		g.lanes = append(g.lanes, Lane{
			X:       left + width*float32(i),
			Width:   width,
			KeyCode: code,
			Label:   strings.ToUpper(lc.Key),
			Channel: lc.Channel,
		})
	}
}

// laneIndex maps each configured channel to its lane
func (g *Game) laneIndex() map[uint32]int {
	m := make(map[uint32]int, len(g.lanes))
	for i, lane := range g.lanes {
		if _, dup := m[lane.Channel]; !dup {
			m[lane.Channel] = i
		}
	}
	return m
}

// LoadChart loads notes from the chart processor
func (g *Game) LoadChart(chartProcessor *ChartProcessor) error {
	g.chartProcessor = chartProcessor
	g.title = chartProcessor.Meta().Title

	notes, err := chartProcessor.Notes(g.laneIndex())
	if err != nil {
		return err
	}
	if debugLogger != nil {
		cfgLanes := make([]LaneConfig, len(g.lanes))
		for i, lane := range g.lanes {
			cfgLanes[i] = LaneConfig{Channel: lane.Channel, Key: lane.Label}
		}
		DebugNotes(notes, cfgLanes)
	}

	g.gameNotes = make([]GameNote, 0, len(notes))
	for _, note := range notes {
		if note.Lane < 0 {
			continue
		}
		g.gameNotes = append(g.gameNotes, GameNote{
			StartTime: note.Time + g.leadIn,
			Lane:      note.Lane,
			Bar:       note.Bar.Bar(),
			Width:     g.lanes[note.Lane].Width - 6,
			Height:    NOTE_HEIGHT,
			IsActive:  true,
		})
	}

	g.songDuration = chartProcessor.Length() + g.leadIn + HIT_WINDOW
	g.totalNotes = int32(len(g.gameNotes))

	fmt.Printf("Loaded %d game notes, song duration: %.1fs\n", len(g.gameNotes), g.songDuration)

	if g.audioManager != nil {
		if err := g.audioManager.LoadChart(notes, g.leadIn); err != nil {
			logWarn("failed to load audio track: %v", err)
		}
	}
	return nil
}

// StartGame starts the game
func (g *Game) StartGame() {
	g.state = StatePlaying
	g.gameStartTime = time.Now()
	g.currentTime = 0
	g.score = 0
	g.combo = 0
	g.maxCombo = 0
	g.perfectHits = 0
	g.goodHits = 0
	g.okHits = 0
	g.missedHits = 0

	for i := range g.gameNotes {
		g.gameNotes[i].IsActive = true
		g.gameNotes[i].IsHit = false
		g.gameNotes[i].HitAccuracy = Miss
	}

	if g.audioManager != nil {
		if err := g.audioManager.StartPlayback(); err != nil {
			logWarn("failed to start audio playback: %v", err)
		}
	}

	fmt.Println("Game started!")
}

// IsPlaying returns whether the game is currently playing
func (g *Game) IsPlaying() bool {
	return g.state == StatePlaying
}

// IsGameOver returns whether the game is over
func (g *Game) IsGameOver() bool {
	return g.state == StateGameOver
}

// IsPaused returns whether the game is paused
func (g *Game) IsPaused() bool {
	return g.state == StatePaused
}

// TogglePause pauses a running game or resumes a paused one. The paused
// interval is cut out of the game clock.
func (g *Game) TogglePause() {
	switch g.state {
	case StatePlaying:
		g.state = StatePaused
		g.pausedAt = time.Now()
		if g.audioManager != nil {
			g.audioManager.Pause()
		}
	case StatePaused:
		g.gameStartTime = g.gameStartTime.Add(time.Since(g.pausedAt))
		g.state = StatePlaying
		if g.audioManager != nil {
			g.audioManager.Resume()
		}
	}
}

// EndGame ends the game and transitions to game over state
func (g *Game) EndGame() {
	g.state = StateGameOver

	if g.audioManager != nil {
		g.audioManager.StopPlayback()
	}

	fmt.Printf("Game ended! Final score: %d, Max combo: %d\n", g.score, g.maxCombo)
}

// Update updates the game state
func (g *Game) Update(deltaTime float32) {
	if !g.IsPlaying() {
		return
	}

	g.currentTime = time.Since(g.gameStartTime).Seconds()

	if g.audioManager != nil {
		g.audioManager.Update()
	}

	if g.currentTime > g.songDuration {
		g.EndGame()
		return
	}

	g.updateInput()
	g.updateNotes(deltaTime)
	g.checkMissedNotes()
	g.checkAllNotesProcessed()
}

// currentBar returns the chart bar at the hit line
func (g *Game) currentBar() int {
	if g.chartProcessor == nil || g.currentTime < g.leadIn {
		return 0
	}
	return g.chartProcessor.BarAt(g.currentTime - g.leadIn)
}

// checkAllNotesProcessed checks if all notes have been hit or missed
func (g *Game) checkAllNotesProcessed() {
	processedNotes := g.perfectHits + g.goodHits + g.okHits + g.missedHits
	if g.totalNotes > 0 && processedNotes >= g.totalNotes {
		logDebug("all notes processed: %d/%d", processedNotes, g.totalNotes)
		g.EndGame()
	}
}

// updateInput handles keyboard input
func (g *Game) updateInput() {
	for i := range g.lanes {
		lane := &g.lanes[i]
		if lane.KeyCode == 0 {
			continue
		}
		lane.IsPressed = rl.IsKeyDown(lane.KeyCode)
		if rl.IsKeyPressed(lane.KeyCode) {
			g.handleKeyPress(i)
		}
	}
}

// updateNotes updates the position of all notes
func (g *Game) updateNotes(deltaTime float32) {
	for i := range g.gameNotes {
		note := &g.gameNotes[i]
		if !note.IsActive {
			continue
		}

		timeUntilHit := note.StartTime - g.currentTime
		note.Y = g.hitLine - float32(timeUntilHit*g.noteSpeed) - note.Height/2

		// Hit notes vanish; missed ones scroll off screen first. Unjudged
		// notes stay active until checkMissedNotes has counted them.
		if note.IsHit && (note.HitAccuracy != Miss || note.Y > float32(g.screenHeight)+50) {
			note.IsActive = false
		}
	}
}

// handleKeyPress handles when a key is pressed
func (g *Game) handleKeyPress(laneIndex int) {
	closestNote := g.findClosestNote(laneIndex)
	if closestNote == nil {
		return
	}

	timeDiff := g.currentTime - closestNote.StartTime
	accuracy := g.calculateAccuracy(timeDiff)
	if accuracy == Miss {
		return
	}
	closestNote.IsHit = true
	closestNote.HitAccuracy = accuracy
	g.addScore(accuracy)
	logDebug("hit lane %d bar %d: %v (%+.0fms), score %d",
		laneIndex, closestNote.Bar, accuracy, timeDiff*1000, g.score)
}

// findClosestNote finds the closest unhit note in the specified lane
func (g *Game) findClosestNote(laneIndex int) *GameNote {
	var closestNote *GameNote
	minDistance := float64(1000000)

	for i := range g.gameNotes {
		note := &g.gameNotes[i]
		if !note.IsActive || note.IsHit || note.Lane != laneIndex {
			continue
		}

		distance := note.StartTime - g.currentTime
		if distance < minDistance && distance > -HIT_WINDOW {
			minDistance = distance
			closestNote = note
		}
	}

	return closestNote
}

// calculateAccuracy calculates hit accuracy based on timing difference
func (g *Game) calculateAccuracy(timeDiff float64) HitAccuracy {
	absTimeDiff := timeDiff
	if absTimeDiff < 0 {
		absTimeDiff = -absTimeDiff
	}

	switch {
	case absTimeDiff <= 0.05:
		return Perfect
	case absTimeDiff <= 0.1:
		return Good
	case absTimeDiff <= 0.15:
		return OK
	default:
		return Miss
	}
}

// addScore adds score based on hit accuracy
func (g *Game) addScore(accuracy HitAccuracy) {
	switch accuracy {
	case Perfect:
		g.score += 100
		g.combo++
		g.perfectHits++
	case Good:
		g.score += 75
		g.combo++
		g.goodHits++
	case OK:
		g.score += 50
		g.combo++
		g.okHits++
	case Miss:
		g.combo = 0
		g.missedHits++
	}

	if g.combo > g.maxCombo {
		g.maxCombo = g.combo
	}

	// Combo bonus
	if g.combo > 10 {
		g.score += g.combo / 10
	}
}

// checkMissedNotes checks for notes that were missed
func (g *Game) checkMissedNotes() {
	for i := range g.gameNotes {
		note := &g.gameNotes[i]
		if !note.IsActive || note.IsHit {
			continue
		}

		if g.currentTime > note.StartTime+HIT_WINDOW {
			note.IsHit = true
			note.HitAccuracy = Miss
			g.addScore(Miss)
			logDebug("missed note in lane %d, bar %d", note.Lane, note.Bar)
		}
	}
}

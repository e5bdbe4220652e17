package main

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"bms-hero/internal/bmstime"
)

// Renderer handles all drawing operations
type Renderer struct {
	game *Game
}

// NewRenderer creates a new renderer
func NewRenderer(game *Game) *Renderer {
	return &Renderer{
		game: game,
	}
}

// Draw renders the entire game
func (r *Renderer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	switch r.game.state {
	case StateMenu:
		r.drawMenu()
	case StatePlaying:
		r.drawGameplay()
	case StatePaused:
		r.drawGameplay()
		r.drawPaused()
	case StateGameOver:
		r.drawGameOver()
	}

	rl.EndDrawing()
}

// drawGameplay draws the main gameplay screen
func (r *Renderer) drawGameplay() {
	r.drawLanes()
	r.drawBarLines()
	r.drawHitLine()
	r.drawNotes()
	r.drawUI()
	r.drawProgressBar()
}

// drawMenu draws the main menu
func (r *Renderer) drawMenu() {
	centerX := r.game.screenWidth / 2
	centerY := r.game.screenHeight / 2

	title := r.game.title
	if title == "" {
		title = "BMS Hero"
	}
	titleWidth := rl.MeasureText(title, 40)
	rl.DrawText(title, centerX-titleWidth/2, centerY-100, 40, rl.White)

	instructions := []string{
		"Press ENTER to Start, P to pause",
		fmt.Sprintf("Use %s to hit notes", r.laneKeys()),
		"Hit notes when they reach the red line",
		"Press ESC to quit",
	}

	for i, instruction := range instructions {
		textWidth := rl.MeasureText(instruction, 20)
		rl.DrawText(instruction, centerX-textWidth/2, centerY-20+int32(i*30), 20, rl.LightGray)
	}
}

func (r *Renderer) laneKeys() string {
	keys := ""
	for i, lane := range r.game.lanes {
		if i > 0 {
			keys += " "
		}
		keys += lane.Label
	}
	return keys
}

// drawPaused dims the frozen gameplay screen
func (r *Renderer) drawPaused() {
	rl.DrawRectangle(0, 0, r.game.screenWidth, r.game.screenHeight, rl.ColorAlpha(rl.Black, 0.6))
	text := "Paused - press P to resume"
	width := rl.MeasureText(text, 30)
	rl.DrawText(text, r.game.screenWidth/2-width/2, r.game.screenHeight/2-15, 30, rl.White)
}

// drawGameOver draws the game over screen
func (r *Renderer) drawGameOver() {
	centerX := r.game.screenWidth / 2
	centerY := r.game.screenHeight / 2

	title := "Game Over!"
	titleWidth := rl.MeasureText(title, 40)
	rl.DrawText(title, centerX-titleWidth/2, centerY-150, 40, rl.Red)

	scoreText := fmt.Sprintf("Final Score: %d", r.game.score)
	scoreWidth := rl.MeasureText(scoreText, 30)
	rl.DrawText(scoreText, centerX-scoreWidth/2, centerY-100, 30, rl.White)

	comboText := fmt.Sprintf("Max Combo: %d", r.game.maxCombo)
	comboWidth := rl.MeasureText(comboText, 25)
	rl.DrawText(comboText, centerX-comboWidth/2, centerY-60, 25, rl.Yellow)

	stats := []struct {
		text  string
		color rl.Color
	}{
		{fmt.Sprintf("Perfect: %d", r.game.perfectHits), rl.Gold},
		{fmt.Sprintf("Good: %d", r.game.goodHits), rl.Green},
		{fmt.Sprintf("OK: %d", r.game.okHits), rl.Blue},
		{fmt.Sprintf("Missed: %d", r.game.missedHits), rl.Red},
	}
	for i, stat := range stats {
		statWidth := rl.MeasureText(stat.text, 20)
		rl.DrawText(stat.text, centerX-statWidth/2, centerY+int32(i*25), 20, stat.color)
	}

	accuracy := float32(0)
	if r.game.totalNotes > 0 {
		accuracy = float32(r.game.perfectHits+r.game.goodHits+r.game.okHits) / float32(r.game.totalNotes) * 100
	}
	accuracyText := fmt.Sprintf("Accuracy: %.1f%%", accuracy)
	accuracyWidth := rl.MeasureText(accuracyText, 25)
	rl.DrawText(accuracyText, centerX-accuracyWidth/2, centerY+120, 25, rl.White)

	restartText := "Press ENTER to play again or ESC to quit"
	restartWidth := rl.MeasureText(restartText, 20)
	rl.DrawText(restartText, centerX-restartWidth/2, centerY+170, 20, rl.LightGray)
}

// laneColor gives scratch lanes red notes and alternates white and blue
// keys like a 7-key controller.
func laneColor(lane Lane, i int) rl.Color {
	switch {
	case lane.Channel == 16 || lane.Channel == 26:
		return rl.Red
	case i%2 == 0:
		return rl.SkyBlue
	default:
		return rl.RayWhite
	}
}

// drawLanes draws the game lanes
func (r *Renderer) drawLanes() {
	for _, lane := range r.game.lanes {
		color := rl.DarkGray
		if lane.IsPressed {
			color = rl.Gray
		}

		rl.DrawRectangle(int32(lane.X), 0, int32(lane.Width), r.game.screenHeight, color)
		rl.DrawRectangleLines(int32(lane.X), 0, int32(lane.Width), r.game.screenHeight, rl.White)

		labelWidth := rl.MeasureText(lane.Label, 16)
		textX := int32(lane.X+lane.Width/2) - labelWidth/2
		textY := int32(r.game.hitLine + 40)
		rl.DrawText(lane.Label, textX, textY, 16, rl.White)
	}
}

// drawBarLines draws a thin line at every upcoming bar start
func (r *Renderer) drawBarLines() {
	g := r.game
	if g.chartProcessor == nil || len(g.lanes) == 0 {
		return
	}
	left := int32(g.lanes[0].X)
	last := g.lanes[len(g.lanes)-1]
	right := int32(last.X + last.Width)

	tl := g.chartProcessor.Timings()
	var hint *bmstime.Hint
	for bar := g.currentBar(); bar <= g.chartProcessor.Chart().BarCount(); bar++ {
		secs, next := bmstime.Time(bar).ToAbsoluteTime(tl, hint)
		hint = &next
		y := g.hitLine - float32((secs+g.leadIn-g.currentTime)*g.noteSpeed)
		if y < 0 {
			break
		}
		rl.DrawLine(left, int32(y), right, int32(y), rl.LightGray)
	}
}

// drawHitLine draws the horizontal hit line
func (r *Renderer) drawHitLine() {
	for dy := float32(-1); dy <= 1; dy++ {
		rl.DrawLine(0, int32(r.game.hitLine+dy), r.game.screenWidth, int32(r.game.hitLine+dy), rl.Red)
	}
}

// drawNotes draws all active game notes
func (r *Renderer) drawNotes() {
	for _, note := range r.game.gameNotes {
		if !note.IsActive {
			continue
		}

		lane := r.game.lanes[note.Lane]
		noteX := lane.X + 3
		noteY := note.Y

		if noteY < -note.Height || noteY > float32(r.game.screenHeight)+note.Height {
			continue
		}

		color := laneColor(lane, note.Lane)
		if note.IsHit {
			switch note.HitAccuracy {
			case Perfect:
				color = rl.Gold
			case Good:
				color = rl.Green
			case OK:
				color = rl.Blue
			case Miss:
				color = rl.Maroon
			}
		}

		rl.DrawRectangle(int32(noteX), int32(noteY), int32(note.Width), int32(note.Height), color)
		rl.DrawRectangleLines(int32(noteX), int32(noteY), int32(note.Width), int32(note.Height), rl.White)
	}
}

// drawUI draws the game UI (score, combo, etc.)
func (r *Renderer) drawUI() {
	scoreText := fmt.Sprintf("Score: %d", r.game.score)
	rl.DrawText(scoreText, 10, 10, 20, rl.White)

	if r.game.combo > 0 {
		comboText := fmt.Sprintf("Combo: %d", r.game.combo)
		rl.DrawText(comboText, 10, 40, 20, rl.Yellow)
	}

	barText := fmt.Sprintf("Bar: %03d", r.game.currentBar())
	rl.DrawText(barText, 10, 70, 20, rl.LightGray)

	if am := r.game.audioManager; am != nil {
		if am.IsPlaying() {
			// Drift between the two clocks shows up as a growing difference.
			audioText := fmt.Sprintf("Audio: ON %.2fs / game %.2fs", am.GetCurrentTime(), r.game.currentTime)
			rl.DrawText(audioText, 10, 100, 16, rl.Green)
		} else {
			rl.DrawText("Audio: OFF", 10, 100, 16, rl.Red)
		}
	}
}

// drawProgressBar draws the song progress bar
func (r *Renderer) drawProgressBar() {
	if r.game.songDuration <= 0 {
		return
	}

	barWidth := int32(150)
	barHeight := int32(10)
	barX := r.game.screenWidth - barWidth - 20
	barY := int32(20)

	rl.DrawRectangle(barX, barY, barWidth, barHeight, rl.DarkGray)

	progress := float32(r.game.currentTime / r.game.songDuration)
	if progress > 1.0 {
		progress = 1.0
	}
	progressWidth := int32(float32(barWidth) * progress)
	rl.DrawRectangle(barX, barY, progressWidth, barHeight, rl.Green)
	rl.DrawRectangleLines(barX, barY, barWidth, barHeight, rl.White)

	timeRemaining := r.game.songDuration - r.game.currentTime
	if timeRemaining < 0 {
		timeRemaining = 0
	}
	timeText := fmt.Sprintf("%.1fs remaining", timeRemaining)
	timeColor := rl.White
	if timeRemaining < 5.0 {
		timeColor = rl.Red
	}
	rl.DrawText(timeText, barX, barY+barHeight+5, 16, timeColor)
}

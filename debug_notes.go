package main

import (
	"fmt"
)

// DebugNotes prints timing information about the first notes of a chart
func DebugNotes(notes []ChartNote, lanes []LaneConfig) {
	if len(notes) == 0 {
		fmt.Println("No notes to debug")
		return
	}

	fmt.Printf("=== NOTE TIMING DEBUG ===\n")
	fmt.Printf("Total notes: %d\n", len(notes))
	fmt.Printf("First 10 notes:\n")
	for i := 0; i < 10 && i < len(notes); i++ {
		note := notes[i]
		fmt.Printf("Note %d: Start=%.3fs, Bar=%d+%.3f, Channel=%d, Value=%d, Lane=%d\n",
			i+1, note.Time, note.Bar.Bar(), note.Bar.Prog(), note.Channel, note.Value, note.Lane)
	}

	fmt.Printf("\nTime ranges:\n")
	fmt.Printf("Earliest note: %.2fs\n", notes[0].Time)
	fmt.Printf("Latest note: %.2fs\n", notes[len(notes)-1].Time)

	notesInFirstMinute := 0
	for _, note := range notes {
		if note.Time > 60.0 {
			break
		}
		notesInFirstMinute++
	}
	fmt.Printf("Notes in first 60 seconds: %d\n", notesInFirstMinute)

	// Notes are already in playback order, so the first hit per lane wins.
	laneFirstNotes := make([]float64, len(lanes))
	for i := range laneFirstNotes {
		laneFirstNotes[i] = -1
	}
	for _, note := range notes {
		if note.Lane >= 0 && note.Lane < len(lanes) && laneFirstNotes[note.Lane] == -1 {
			laneFirstNotes[note.Lane] = note.Time
		}
	}

	fmt.Printf("First note per lane:\n")
	for i, startTime := range laneFirstNotes {
		if startTime >= 0 {
			fmt.Printf("Lane %s (ch %d): %.2fs\n", lanes[i].Key, lanes[i].Channel, startTime)
		} else {
			fmt.Printf("Lane %s (ch %d): No notes\n", lanes[i].Key, lanes[i].Channel)
		}
	}
	fmt.Printf("=========================\n")
}

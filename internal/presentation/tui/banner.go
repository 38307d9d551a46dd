package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Waypoint ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	// Using a subtle gradient-like color scheme (Teal/Green)
	lines := []struct {
		text  string
		color string
	}{
		{" __      __                     _       _   ", "#2dd4bf"},
		{" \\ \\    / /_ _ _  _ _ __  ___ (_)_ _ | |_ ", "#34d399"},
		{"  \\ \\/\\/ / _` | || | '_ \\/ _ \\| | ' \\|  _|", "#4ade80"},
		{"   \\_/\\_/\\__,_|\\_, | .__/\\___/|_|_||_|\\__|", "#a3e635"},
		{"               |__/|_|                    ", "#facc15"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Outcome colours a mission outcome for terminal output.
func Outcome(w io.Writer, outcome string) string {
	p := termenv.NewOutput(w).ColorProfile()
	color := "#f87171"
	switch outcome {
	case "completed":
		color = "#4ade80"
	case "no_plan":
		color = "#facc15"
	}
	return termenv.String(outcome).Foreground(p.Color(color)).Bold().String()
}

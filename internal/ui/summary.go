package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// SessionSummary holds the stats shown when a chat session ends.
type SessionSummary struct {
	Identity string
	Rooms    int
	Sent     int
	Received int
	Duration time.Duration
}

// RenderSessionSummary prints the end-of-session stats table.
func RenderSessionSummary(summary SessionSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter

	t.SetTitle("📊 Session Summary")
	t.AppendRows([]table.Row{
		{"Identity", summary.Identity},
		{"Rooms", summary.Rooms},
		{"Messages Sent", summary.Sent},
		{"Messages Received", summary.Received},
		{"Duration", fmt.Sprintf("%.0fs", summary.Duration.Seconds())},
	})
	t.Render()
}

package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"go.klb.dev/clipotp/internal/selection"
)

// statusLine renders the one-line summary printed when a run ends. Colours
// are dropped automatically when w is not a terminal.
func statusLine(w io.Writer, res selection.Result) string {
	r := lipgloss.NewRenderer(w)
	ok := r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warn := r.NewStyle().Foreground(lipgloss.Color("3"))
	dim := r.NewStyle().Faint(true)

	switch res.Outcome {
	case selection.Shared:
		who := res.Recipient
		if who == "" {
			who = "an unidentified client"
		}
		return ok.Render("shared") + dim.Render(" with "+who)
	case selection.Cleared:
		return warn.Render("cleared")
	case selection.Lost:
		return warn.Render("selection taken by another client")
	case selection.TimedOut:
		return warn.Render("timed out")
	default:
		return dim.Render(res.Outcome.String())
	}
}

func printStatus(w io.Writer, res selection.Result) {
	_, _ = fmt.Fprintln(w, statusLine(w, res))
}

package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintBanner writes the chat banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{"   ___                _                    ", "#38bdf8"},
		{"  / __|___ _ _  __ __(_)___ _ _ __ _ ___   ", "#22d3ee"},
		{" | (__/ _ \\ ' \\/ _/ _| / -_) '_/ _` / -_)  ", "#2dd4bf"},
		{"  \\___\\___/_||_\\__\\__|_\\___|_| \\__, \\___|  ", "#34d399"},
		{"                               |___/       ", "#4ade80"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String(" Type /escalate to return to the main assistant, exit to quit.").Faint())
	fmt.Fprintln(w)
}

// Highlight styles approval prompts and errors for the terminal.
func Highlight(typ domain.EventType, text string) string {
	p := termenv.ColorProfile()
	switch typ {
	case domain.EventApprovalNeeded:
		return termenv.String(text).Foreground(p.Color("#fbbf24")).Bold().String()
	case domain.EventError:
		return termenv.String(text).Foreground(p.Color("#f87171")).String()
	}
	return text
}

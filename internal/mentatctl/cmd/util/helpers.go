package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
	"github.com/moby/term"
)

// CheckErr prints err and exits non-zero. No-op on nil.
func CheckErr(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
	os.Exit(1)
}

// TermWidth returns the terminal width, or 80 when stdout is not a tty.
func TermWidth() int {
	ws, err := term.GetWinsize(os.Stdout.Fd())
	if err != nil || ws.Width == 0 {
		return 80
	}
	return int(ws.Width)
}

// RenderMarkdown renders markdown for terminal display. On any renderer
// failure the content comes back word-wrapped but otherwise untouched.
func RenderMarkdown(content string, width int) string {
	if width <= 0 {
		width = 76
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wordwrap.WrapString(content, uint(width))
	}
	rendered, err := r.Render(content)
	if err != nil {
		return wordwrap.WrapString(content, uint(width))
	}
	return strings.TrimRight(rendered, "\n")
}

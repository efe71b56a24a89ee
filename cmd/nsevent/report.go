package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/dshills/nsevent/internal/scenario"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	passStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#00875F", Dark: "#5FD787"}).
			Bold(true)
	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}).
			Bold(true)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"})
	dimStyle = lipgloss.NewStyle().Faint(true)
)

// configureColor turns styling off when output is piped or NO_COLOR is set.
func configureColor(out *os.File) {
	if os.Getenv("NO_COLOR") != "" ||
		(!isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// renderReport writes one line per step followed by a summary.
func renderReport(w io.Writer, path string, r *scenario.Report) {
	name := r.Name
	if name == "" {
		name = path
	}
	fmt.Fprintln(w, titleStyle.Render(name))

	for _, step := range r.Steps {
		mark := passStyle.Render("PASS")
		if !step.OK() {
			mark = failStyle.Render("FAIL")
		}

		detail := ""
		if len(step.Calls) > 0 {
			detail = " -> " + strings.Join(step.Calls, ", ")
		}
		fmt.Fprintf(w, "  %s %2d  %s%s\n", mark, step.Index, step.Step, dimStyle.Render(detail))

		for _, f := range step.Failures {
			fmt.Fprintf(w, "           %s\n", errorStyle.Render(f))
		}
	}

	failed := len(r.Failed())
	summary := passStyle.Render(fmt.Sprintf("ok: %d steps, %d calls", len(r.Steps), len(r.Calls)))
	if failed > 0 {
		summary = failStyle.Render(fmt.Sprintf("failed: %d of %d steps", failed, len(r.Steps)))
	}
	fmt.Fprintln(w, "  "+summary)
}

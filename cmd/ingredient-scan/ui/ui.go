// Package ui provides terminal output helpers for the ingredient-scan CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"ingredient-scanner/internal/app"
	"ingredient-scanner/internal/wordlist"
)

var (
	prohibitedColor = color.New(color.FgRed, color.Bold)
	suspiciousColor = color.New(color.FgYellow)
	okColor         = color.New(color.FgGreen, color.Bold)
	dimColor        = color.New(color.Faint)
	headerColor     = color.New(color.Bold)
)

// Init applies the global color setting.
func Init(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

// Spinner wraps a spinner instance for indeterminate progress display.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	return &Spinner{spinner: s}
}

func (s *Spinner) Start() {
	s.spinner.Start()
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// ProgressBar counts completed scans when several modes are tried.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a progress bar writing to stderr.
func NewProgressBar(total int, description string) *ProgressBar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
	return &ProgressBar{bar: bar}
}

// Describe changes the text shown next to the bar.
func (p *ProgressBar) Describe(description string) {
	p.bar.Describe(description)
}

func (p *ProgressBar) Add(n int) {
	_ = p.bar.Add(n)
}

func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

// PrintResult writes a human-readable scan result.
func PrintResult(w io.Writer, res *app.ScanResult, showText bool) {
	headerColor.Fprintf(w, "%s", res.ModeName)
	dimColor.Fprintf(w, " (%s, %s)\n", res.Source, res.Duration.Round(time.Millisecond))

	findings, msg := app.Report(res)
	if msg != "" {
		if msg == app.NoMatchesMessage {
			okColor.Fprintln(w, "  "+msg)
		} else {
			dimColor.Fprintln(w, "  "+msg)
		}
	}
	for _, f := range findings {
		if f.Category == wordlist.Prohibited {
			prohibitedColor.Fprintf(w, "  PROHIBITED  %s\n", f.Phrase)
		} else {
			suspiciousColor.Fprintf(w, "  SUSPICIOUS  %s\n", f.Phrase)
		}
	}

	if showText && res.Text != "" {
		dimColor.Fprintln(w, "  --- recognized text ---")
		fmt.Fprintln(w, res.Text)
	}
}

// PrintList writes one numbered word list.
func PrintList(w io.Writer, c wordlist.Category, phrases []string) {
	c2 := suspiciousColor
	if c == wordlist.Prohibited {
		c2 = prohibitedColor
	}
	c2.Fprintf(w, "%s (%d)\n", c, len(phrases))
	for i, p := range phrases {
		fmt.Fprintf(w, "  %3d  %s\n", i, p)
	}
}

// Success prints a confirmation line.
func Success(w io.Writer, format string, args ...interface{}) {
	okColor.Fprintf(w, format+"\n", args...)
}

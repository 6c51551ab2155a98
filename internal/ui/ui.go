package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
)

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(os.Stderr, "  "+format+"\n", a...)
}

// --- Summaries ---

// PrintRunSummary groups targets by their terminal outcome. Lines under
// each group carry "docPath (reason)" strings prepared by the caller.
func PrintRunSummary(generated, noChange, fetchFailed, invalid []string) {
	Header("\n--- Sync Summary ---")

	if len(generated) == 0 && len(noChange) == 0 && len(fetchFailed) == 0 && len(invalid) == 0 {
		Info("No documentation targets matched this diff.")
		return
	}

	if len(generated) > 0 {
		Success("Generated patches for %d document(s):", len(generated))
		for _, t := range generated {
			fmt.Printf("  - %s\n", t)
		}
	}
	if len(noChange) > 0 {
		Info("Already up to date, %d document(s):", len(noChange))
		for _, t := range noChange {
			fmt.Printf("  - %s\n", t)
		}
	}
	if len(fetchFailed) > 0 {
		Error("Could not fetch %d document(s):", len(fetchFailed))
		for _, t := range fetchFailed {
			fmt.Printf("  - %s\n", t)
		}
	}
	if len(invalid) > 0 {
		Error("No applicable patch for %d document(s):", len(invalid))
		for _, t := range invalid {
			fmt.Printf("  - %s\n", t)
		}
	}
}

// --- Progress Bar ---

type ProgressBar struct {
	total   int
	prefix  string
	current int
}

func NewProgressBar(total int, prefix string) *ProgressBar {
	return &ProgressBar{total: total, prefix: prefix}
}

func (p *ProgressBar) Start() {
	p.draw()
}

func (p *ProgressBar) Increment() {
	p.current++
	p.draw()
}

func (p *ProgressBar) Finish() {
	fmt.Fprintln(os.Stderr)
}

func (p *ProgressBar) draw() {
	if p.total == 0 {
		return
	}
	const barLength = 40
	percent := float64(p.current) / float64(p.total)
	filledLength := int(percent * barLength)
	bar := strings.Repeat("█", filledLength) + strings.Repeat("-", barLength-filledLength)

	percentStr := fmt.Sprintf("%.1f%%", percent*100)
	countStr := fmt.Sprintf("[%d/%d]", p.current, p.total)

	fmt.Fprintf(os.Stderr, "\r%s |%s| %s %s", p.prefix, bar, countStr, percentStr)
}

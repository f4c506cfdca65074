package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ColorCyan is the ANSI cyan foreground used for release progress lines.
var ColorCyan = lipgloss.Color("6")

// ProgressPrinter writes release announcements as cyan lines separated by blank lines.
type ProgressPrinter struct {
	writer    io.Writer
	style     lipgloss.Style
	mutex     sync.Mutex
	announced bool
}

// NewProgressPrinter constructs a printer writing to the writer, or stdout when nil.
// The renderer drops colours when the writer is not a terminal.
func NewProgressPrinter(writer io.Writer) *ProgressPrinter {
	if writer == nil {
		writer = os.Stdout
	}
	renderer := lipgloss.NewRenderer(writer)
	return &ProgressPrinter{writer: writer, style: renderer.NewStyle().Foreground(ColorCyan)}
}

// Announce prints the message. Every announcement after the first is preceded by a blank line.
func (printer *ProgressPrinter) Announce(message string) {
	printer.mutex.Lock()
	defer printer.mutex.Unlock()
	if printer.announced {
		fmt.Fprintln(printer.writer)
	}
	printer.announced = true
	fmt.Fprintln(printer.writer, printer.style.Render(message))
}

// Package output provides consistent CLI output formatting.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorDim   = "\033[2m"
)

// Writer provides formatted output for the CLI. Color is enabled only
// when writing to a terminal.
type Writer struct {
	out      io.Writer
	useColor bool
}

// New creates a Writer, detecting terminal capability from the target.
func New(out io.Writer) *Writer {
	useColor := false
	if f, ok := out.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{out: out, useColor: useColor}
}

// Printf writes a plain formatted line.
func (w *Writer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format+"\n", args...)
}

// Successf writes a success line.
func (w *Writer) Successf(format string, args ...any) {
	w.colored(colorGreen, format, args...)
}

// Errorf writes an error line.
func (w *Writer) Errorf(format string, args ...any) {
	w.colored(colorRed, format, args...)
}

// Mutedf writes a dimmed line for secondary detail.
func (w *Writer) Mutedf(format string, args ...any) {
	w.colored(colorDim, format, args...)
}

func (w *Writer) colored(color, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if w.useColor {
		_, _ = fmt.Fprintf(w.out, "%s%s%s\n", color, msg, colorReset)
		return
	}
	_, _ = fmt.Fprintln(w.out, msg)
}

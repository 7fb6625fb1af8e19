// Package output renders testtask's human-facing text: help screens,
// run diagnostics, replay summaries and error lines.
//
// Anything meant for a person goes through a Writer so color and quiet
// mode are decided in one place. Machine output (--log-json, reports)
// bypasses it.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Writer writes to a stdout/stderr pair, coloring when attached to a terminal.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool
}

// New returns a Writer on the process's stdout and stderr.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// NewWithWriters returns a Writer on the given streams.
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{out: out, err: err, color: color}
}

// SetQuiet toggles quiet mode, which drops Info lines.
func (w *Writer) SetQuiet(quiet bool) { w.quiet = quiet }

// Quiet reports whether quiet mode is on.
func (w *Writer) Quiet() bool { return w.quiet }

// Print writes formatted text to stdout without a newline.
func (w *Writer) Print(format string, args ...any) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a formatted line to stdout.
func (w *Writer) Println(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Errorln writes a formatted line to stderr.
func (w *Writer) Errorln(format string, args ...any) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

const (
	colorTitle       = bold + cyan
	colorSection     = bold + yellow
	colorCommand     = bold + cyan
	colorPlaceholder = green
	colorFlag        = yellow
	colorDescription = dim
	colorExample     = cyan
)

// paint wraps text in an ANSI style when color is enabled.
func (w *Writer) paint(style, text string) string {
	if !w.color || style == "" {
		return text
	}
	return style + text + reset
}

// Info writes a run diagnostic to stdout unless quiet.
func (w *Writer) Info(format string, args ...any) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Severe writes a failure diagnostic to stderr. Multi-line messages stay
// in one colored block.
func (w *Writer) Severe(format string, args ...any) {
	w.Errorln("%s", w.paint(red, fmt.Sprintf(format, args...)))
}

// Hint writes a muted secondary line to stdout.
func (w *Writer) Hint(format string, args ...any) {
	w.Println("%s", w.paint(dim, fmt.Sprintf(format, args...)))
}

// ErrorPrefix writes "testtask: <message>" to stderr.
func (w *Writer) ErrorPrefix(format string, args ...any) {
	w.Errorln("%s %s", w.paint(red, "testtask:"), fmt.Sprintf(format, args...))
}

// WarningSimple writes "warning: <message>" to stderr.
func (w *Writer) WarningSimple(format string, args ...any) {
	w.Errorln("%s %s", w.paint(yellow, "warning:"), fmt.Sprintf(format, args...))
}

// HelpTitle writes the first line of a help screen.
func (w *Writer) HelpTitle(title string) {
	w.Println("%s", w.paint(colorTitle, title))
}

// HelpSection writes a blank line and a section heading such as "Commands:".
func (w *Writer) HelpSection(title string) {
	w.Println("")
	w.Println("%s", w.paint(colorSection, title))
}

// HelpCommand writes a command name padded to width, then its description.
func (w *Writer) HelpCommand(name, description string, width int) {
	w.helpRow(colorCommand, name, description, width)
}

// HelpFlag writes a flag padded to width, then its description.
func (w *Writer) HelpFlag(name, description string, width int) {
	w.helpRow(colorFlag, name, description, width)
}

func (w *Writer) helpRow(style, name, description string, width int) {
	if !w.color {
		w.Println("  %-*s  %s", width, name, description)
		return
	}
	pad := strings.Repeat(" ", max(width-len(name), 0))
	w.Println("  %s%s  %s", w.paint(style, w.colorPlaceholders(name)), pad, w.paint(colorDescription, description))
}

// HelpUsage writes an indented usage line with <placeholders> highlighted.
func (w *Writer) HelpUsage(usage string) {
	if w.color {
		usage = w.colorPlaceholders(usage)
	}
	w.Println("  %s", usage)
}

// HelpExample writes an example invocation and, if given, what it does.
func (w *Writer) HelpExample(command, description string) {
	w.Println("  %s", w.paint(colorExample, command))
	if description != "" {
		w.Println("      %s", w.paint(colorDescription, description))
	}
}

// SummaryHeader writes a "=== title ===" block heading.
func (w *Writer) SummaryHeader(title string) {
	w.Println("")
	w.Println("%s", w.paint(bold+cyan, "=== "+title+" ==="))
	w.Println("")
}

// SummaryItem writes an indented "label: value" line.
func (w *Writer) SummaryItem(label, value string) {
	w.Println("  %s %s", w.paint(dim, label+":"), value)
}

// FinalSuccess writes the closing line of a passing summary.
func (w *Writer) FinalSuccess(format string, args ...any) {
	w.Println("")
	w.Println("%s", w.paint(green, fmt.Sprintf(format, args...)))
}

// FinalFailure writes the closing line of a failing summary.
func (w *Writer) FinalFailure(format string, args ...any) {
	w.Println("")
	w.Println("%s", w.paint(red, fmt.Sprintf(format, args...)))
}

// ValidationSuccess writes a check-marked confirmation; the mark is omitted without color.
func (w *Writer) ValidationSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		msg = w.paint(green, "✓") + " " + msg
	}
	w.Println("%s", msg)
}

// colorPlaceholders highlights each <placeholder> in text.
func (w *Writer) colorPlaceholders(text string) string {
	var sb strings.Builder
	for {
		start := strings.IndexByte(text, '<')
		if start < 0 {
			break
		}
		end := strings.IndexByte(text[start:], '>')
		if end < 0 {
			break
		}
		sb.WriteString(text[:start])
		sb.WriteString(reset + colorPlaceholder + text[start:start+end+1] + reset)
		text = text[start+end+1:]
	}
	sb.WriteString(text)
	return sb.String()
}

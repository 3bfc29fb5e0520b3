// Package ui provides terminal output helpers for the CLI.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Printer writes user-facing CLI output, with ANSI color when the
// destination is an interactive terminal.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter creates a printer for the given writer. Color is enabled only
// for interactive terminals outside CI, and never when NO_COLOR is set.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:   out,
		color: IsTTY(out) && !DetectNoColor() && !DetectCI(),
	}
}

// Printf writes formatted output.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Successf writes a success line, green when color is enabled.
func (p *Printer) Successf(format string, args ...any) {
	p.stylef("\033[32m", format, args...)
}

// Warnf writes a warning line, yellow when color is enabled.
func (p *Printer) Warnf(format string, args ...any) {
	p.stylef("\033[33m", format, args...)
}

// Errorf writes an error line, red when color is enabled.
func (p *Printer) Errorf(format string, args ...any) {
	p.stylef("\033[31m", format, args...)
}

func (p *Printer) stylef(code, format string, args ...any) {
	if p.color {
		fmt.Fprintf(p.out, code+format+"\033[0m\n", args...)
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}

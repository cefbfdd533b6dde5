package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/pint-lang/pint/config"
	"github.com/pint-lang/pint/token"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiGreen  = "\033[32m"
)

// printer writes diagnostics, colouring them when asked to or when the
// output is a terminal.
type printer struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer, mode string) *printer {
	return &printer{w: w, color: useColor(w, mode)}
}

func useColor(w io.Writer, mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func (p *printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

func (p *printer) diagnostic(e *token.CompileError) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s %s\n", p.paint(ansiBold, e.Token.Pos()+":"), p.paint(ansiRed, "error:"), e.Msg)
}

func (p *printer) warnf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", p.paint(ansiYellow, "warning:"), fmt.Sprintf(format, args...))
}

func (p *printer) summary(files, errors int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if errors == 0 {
		fmt.Fprintln(p.w, p.paint(ansiGreen, fmt.Sprintf("checked %s, no errors", plural(files, "file"))))
		return
	}
	fmt.Fprintln(p.w, p.paint(ansiRed, fmt.Sprintf("checked %s, %s", plural(files, "file"), plural(errors, "error"))))
}

// typeLine prints the type of an expression entered in the REPL.
func (p *printer) typeLine(t string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, p.paint(ansiGreen, ": "+t))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

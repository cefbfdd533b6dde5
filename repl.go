package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/peterh/liner"
	"github.com/pint-lang/pint/config"
	"github.com/pint-lang/pint/lexer"
	"github.com/pint-lang/pint/parser"
	"github.com/pint-lang/pint/token"
	"github.com/pint-lang/pint/typechecker"
)

const (
	historyFile = "repl_history"
	promptMain  = "pint> "
	promptCont  = "...   "
	replFile    = "repl"
)

const replHelp = `Enter a definition (let ...) to keep it for later lines, or an
expression to see its type.
  :help   show this text
  :quit   leave (also Ctrl+D)`

// replSession checks the lines of an interactive session against globals
// that grow with every definition.
type replSession struct {
	checker *typechecker.Checker
	out     *printer
	line    int
}

func newREPLSession(cfg *config.Config, out *printer) *replSession {
	s := &replSession{checker: newChecker(cfg), out: out}
	s.flush(0)
	return s
}

// flush prints the diagnostics logged since the first from.
func (s *replSession) flush(from int) bool {
	errs := s.checker.Log().Errors()[from:]
	for _, e := range errs {
		s.out.diagnostic(e)
	}
	return len(errs) > 0
}

// eval checks one complete input.
func (s *replSession) eval(src string) {
	s.line++
	name := fmt.Sprintf("%s[%d]", replFile, s.line)
	log := s.checker.Log()
	from := len(log.Errors())

	p := parser.New(lexer.New(name, src))
	if startsWithLet(src) {
		file := p.ParseFile()
		log.Add(p.Errors()...)
		if len(p.Errors()) == 0 {
			s.checker.CheckFile(file)
		}
		s.flush(from)
		return
	}

	e := p.ParseExpr()
	log.Add(p.Errors()...)
	if len(p.Errors()) > 0 {
		s.flush(from)
		return
	}
	t := s.checker.CheckExpr(e)
	if !s.flush(from) {
		s.out.typeLine(t.String())
	}
}

func startsWithLet(src string) bool {
	tok := lexer.New(replFile, src).NextToken()
	return tok.Type == token.LET
}

// incomplete reports whether src opens more brackets than it closes, in
// which case the REPL reads another line.
func incomplete(src string) bool {
	l := lexer.New(replFile, src)
	depth := 0
	for tok := l.NextToken(); tok.Type != token.EOF; tok = l.NextToken() {
		switch tok.Type {
		case token.LBRACE, token.LPAREN, token.LBRACK:
			depth++
		case token.RBRACE, token.RPAREN, token.RBRACK:
			depth--
		}
	}
	return depth > 0
}

// readInput reads lines until the brackets balance. ok is false at the end
// of input.
func readInput(ln *liner.State) (string, bool) {
	var sb strings.Builder
	prompt := promptMain
	for {
		line, err := ln.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) && sb.Len() > 0 {
				// Ctrl+C drops a half-entered input
				return "", true
			}
			return "", false
		}
		sb.WriteString(line)
		sb.WriteString("\n")
		if !incomplete(sb.String()) {
			return sb.String(), true
		}
		prompt = promptCont
	}
}

// withHistory runs fn on the history file under its lock.
func withHistory(cacheDir string, flag int, fn func(f *os.File)) {
	path := filepath.Join(cacheDir, historyFile)
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return
	}
	defer lock.Unlock()
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	fn(f)
}

func runREPL(cfg *config.Config, cacheDir string, out *printer) int {
	fmt.Fprintf(out.w, "pint %s, language %s. Type :help for help.\n", Version, LanguageVersion)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	// Load history (best-effort)
	withHistory(cacheDir, os.O_RDONLY, func(f *os.File) { _, _ = ln.ReadHistory(f) })

	s := newREPLSession(cfg, out)
	for {
		src, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(out.w)
			break
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(trimmed, "\n", " "))

		switch trimmed {
		case ":quit", ":q":
			return persist(ln, cacheDir)
		case ":help", ":h":
			fmt.Fprintln(out.w, replHelp)
			continue
		}
		s.eval(src)
	}
	return persist(ln, cacheDir)
}

func persist(ln *liner.State, cacheDir string) int {
	withHistory(cacheDir, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, func(f *os.File) { _, _ = ln.WriteHistory(f) })
	return exitOK
}

package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/pint-lang/pint/ast"
	"github.com/pint-lang/pint/config"
	"github.com/pint-lang/pint/lexer"
	"github.com/pint-lang/pint/parser"
	"github.com/pint-lang/pint/token"
	"github.com/pint-lang/pint/typechecker"
	"golang.org/x/sync/errgroup"
)

// session holds what stays the same across the check runs of one
// invocation.
type session struct {
	cfg    *config.Config
	out    *printer
	cache  *resultCache // nil when caching is off
	report string       // "" when no report is kept
}

type fileResult struct {
	Path   string
	Errors []*token.CompileError
	Cached bool
}

// collectSources expands directories into the .pint files below them.
// Files named explicitly are kept whatever their suffix. The result is
// sorted and free of duplicates.
func collectSources(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(path))
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if !d.IsDir() && strings.HasSuffix(p, SourceSuffix) {
				files = append(files, filepath.Clean(p))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// externSource names the origin of extern types in diagnostics.
func externSource(cfg *config.Config) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	return config.FileName
}

// declareExterns parses the extern signatures of cfg and adds them to the
// checker's globals. Problems are logged like source diagnostics.
func declareExterns(c *typechecker.Checker, cfg *config.Config) {
	src := externSource(cfg)
	for _, ext := range cfg.Externs {
		ok := true
		params := make([]*ast.Param, len(ext.Params))
		for i, p := range ext.Params {
			te, errs := parser.ParseType(src, p.Type)
			c.Log().Add(errs...)
			ok = ok && len(errs) == 0
			params[i] = &ast.Param{Token: token.Token{Type: token.IDENT, Literal: p.Name, FileName: src}, Name: p.Name, Type: te}
		}
		ret, errs := parser.ParseType(src, ext.Returns)
		c.Log().Add(errs...)
		if ok && len(errs) == 0 {
			c.DeclareExtern(ext.Name, params, ret)
		}
	}
}

// newChecker returns a checker whose globals hold the builtins and the
// configured externs.
func newChecker(cfg *config.Config) *typechecker.Checker {
	globals := typechecker.NewGlobals()
	typechecker.AddBuiltins(globals)
	c := typechecker.New(globals, &typechecker.ErrorLogger{})
	declareExterns(c, cfg)
	return c
}

// checkSource parses and checks one file. A file that does not parse is
// not type checked, since recovery leaves holes the checker would report.
func checkSource(path string, src []byte, cfg *config.Config) []*token.CompileError {
	c := newChecker(cfg)
	p := parser.New(lexer.New(path, string(src)))
	file := p.ParseFile()
	c.Log().Add(p.Errors()...)
	if len(p.Errors()) == 0 {
		c.CheckFile(file)
	}
	return c.Log().Errors()
}

func (s *session) checkFile(path string) (fileResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return fileResult{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if s.cache != nil {
		if errs, ok := s.cache.load(path, src, s.cfg); ok {
			return fileResult{Path: path, Errors: errs, Cached: true}, nil
		}
	}
	res := fileResult{Path: path, Errors: checkSource(path, src, s.cfg)}
	if s.cache != nil {
		if err := s.cache.store(path, src, s.cfg, res.Errors); err != nil {
			s.out.warnf("could not cache the result for %s: %v", path, err)
		}
	}
	return res, nil
}

// checkAll checks the files concurrently, one checker per file. Results
// are in the order of files.
func (s *session) checkAll(ctx context.Context, files []string) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.checkFile(path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// checkOnce runs one check over paths, prints and reports the results and
// tells whether any file had diagnostics.
func (s *session) checkOnce(ctx context.Context, paths []string) (bool, error) {
	files, err := collectSources(paths)
	if err != nil {
		return false, err
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no %s files found", SourceSuffix)
	}
	results, err := s.checkAll(ctx, files)
	if err != nil {
		return false, err
	}

	failed := false
	count := 0
	for _, res := range results {
		for _, e := range res.Errors {
			s.out.diagnostic(e)
		}
		count += len(res.Errors)
		failed = failed || len(res.Errors) > 0
	}
	s.out.summary(len(results), count)

	if s.report != "" {
		if err := appendReport(s.report, results); err != nil {
			return failed, err
		}
	}
	return failed, nil
}

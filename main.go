// Command pint type checks Pint source files.
//
// With no arguments it checks the sources of the project file found from
// the working directory, or every .pint file below it. Diagnostics are
// printed as file:line:col: message and the exit status is 1 when there
// were any.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/pint-lang/pint/config"
)

const SourceSuffix = ".pint"

// exit statuses
const (
	exitOK      = 0
	exitErrors  = 1
	exitFailure = 2
)

type options struct {
	configPath string
	reportPath string
	watch      bool
	repl       bool
	noCache    bool
	version    bool
	paths      []string
}

// defaultPintCache gets env variable PINTCACHE
// if it is not set sets it to default value for windows, mac, linux
func defaultPintCache() string {
	if env := os.Getenv("PINTCACHE"); env != "" {
		return env
	}

	homeDir, _ := os.UserHomeDir()
	var cache string
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LocalAppData"); localAppData != "" {
			return filepath.Join(localAppData, "pint")
		}
		cache = filepath.Join(homeDir, "AppData", "Local", "pint")

	case "darwin":
		cache = filepath.Join(homeDir, "Library", "Caches", "pint")

	default: // Linux and others
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "pint")
		}
		cache = filepath.Join(homeDir, ".cache", "pint")
	}
	return cache
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("pint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: pint [flags] [file.pint | dir]...")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.configPath, "config", "", "project file (default: "+config.FileName+" found from the working directory)")
	fs.StringVar(&opts.reportPath, "report", "", "append diagnostics to this file")
	fs.BoolVar(&opts.watch, "watch", false, "check again whenever a source file changes")
	fs.BoolVar(&opts.repl, "repl", false, "start an interactive session")
	fs.BoolVar(&opts.noCache, "nocache", false, "do not read or write cached results")
	fs.BoolVar(&opts.version, "version", false, "print version information")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.paths = fs.Args()
	return opts, nil
}

// loadConfig reads the project file named by path, or the one found from
// dir, or falls back to the default configuration.
func loadConfig(path, dir string) (*config.Config, error) {
	if path == "" {
		found, err := config.Find(dir)
		if err != nil {
			return nil, err
		}
		if found == "" {
			return config.Default(dir), nil
		}
		path = found
	}
	return config.Load(path)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}
	if opts.version {
		printVersion(stdout)
		return exitOK
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "Error getting current working directory: %v\n", err)
		return exitFailure
	}
	cfg, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	if err := cfg.CheckLanguage(LanguageVersion); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", cfg.Path, err)
		return exitFailure
	}
	if opts.reportPath == "" {
		opts.reportPath = cfg.ReportPath()
	}

	cacheDir := defaultPintCache()
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		fmt.Fprintf(stderr, "Error creating PINTCACHE directory: %v\n", err)
		return exitFailure
	}

	out := newPrinter(stdout, cfg.Color)
	if opts.repl {
		return runREPL(cfg, cacheDir, out)
	}

	s := &session{cfg: cfg, out: out, report: opts.reportPath}
	if !opts.noCache {
		if s.cache, err = openResultCache(cacheDir, out); err != nil {
			fmt.Fprintf(stderr, "warning: result cache disabled: %v\n", err)
		}
	}
	paths := opts.paths
	if len(paths) == 0 {
		paths = cfg.SourcePaths()
	}
	if opts.watch {
		if err := s.watch(ctx, paths); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, err)
			return exitFailure
		}
		return exitOK
	}

	failed, err := s.checkOnce(ctx, paths)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	if failed {
		return exitErrors
	}
	return exitOK
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

package main

import (
	"fmt"
	"io"
	"runtime"
)

// LanguageVersion is the version of the Pint language this checker
// implements. Project files constrain it with their language field.
const LanguageVersion = "0.1.0"

// Build-time variables injected via linker flags (ldflags).
//
// These defaults are used for development builds (go build -o pint).
// Release builds use:
//
//	go build -ldflags "-X main.Version=$(git describe --tags) ..." -o pint
//
// The -X flag overwrites these string variables at link time.
// See: https://pkg.go.dev/cmd/link (-X importpath.name=value)
var (
	Version   = "dev"     // Overwritten with git tag (e.g., "v0.1.0")
	Commit    = "unknown" // Overwritten with git commit hash
	BuildDate = "unknown" // Overwritten with build timestamp
)

// printVersion prints version information to w.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "pint %s (language %s, %s/%s)\n", Version, LanguageVersion, runtime.GOOS, runtime.GOARCH)
	if Commit != "unknown" {
		fmt.Fprintf(w, "  commit: %s\n", Commit)
	}
	if BuildDate != "unknown" {
		fmt.Fprintf(w, "  built:  %s\n", BuildDate)
	}
}

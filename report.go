package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// appendReport appends one run's diagnostics to the report file:
//
//	# pint dev 2026-01-02T15:04:05Z: 2 files, 1 error
//	src/a.pint:3:7: no such variable as 'y'
//
// Runs from several processes may share a report, so the append happens
// under a lock on path.lock.
func appendReport(path string, results []fileResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire report lock: %w", err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}
	w := bufio.NewWriter(f)

	count := 0
	for _, res := range results {
		count += len(res.Errors)
	}
	fmt.Fprintf(w, "# pint %s %s: %s, %s\n", Version, time.Now().UTC().Format(time.RFC3339),
		plural(len(results), "file"), plural(count, "error"))
	for _, res := range results {
		for _, e := range res.Errors {
			fmt.Fprintln(w, e)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

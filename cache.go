package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gofrs/flock"
	"github.com/pint-lang/pint/config"
	"github.com/pint-lang/pint/token"
	"gopkg.in/yaml.v3"
)

const (
	RESULTS_DIR = "results"
	RESULT_FILE = "result.yaml"
	LOCK_FILE   = ".lock"

	keepResults   = 256
	minResultAge  = 7 * 24 * time.Hour
	shortHashSize = 8
)

// resultCache stores the diagnostics of checked files under
// PINTCACHE/results/<short hash>, keyed by everything the outcome depends
// on. A file lock keeps concurrent pint processes from seeing half-written
// entries.
type resultCache struct {
	dir string
}

// cachedResult is the on-disk form of one entry. Hash is the full key and
// guards against short hash collisions.
type cachedResult struct {
	Hash        string             `yaml:"hash"`
	Path        string             `yaml:"path"`
	Diagnostics []cachedDiagnostic `yaml:"diagnostics"`
}

type cachedDiagnostic struct {
	Line    int    `yaml:"line"`
	Column  int    `yaml:"column"`
	Literal string `yaml:"literal,omitempty"`
	File    string `yaml:"file,omitempty"`
	Msg     string `yaml:"msg"`
}

// isHashDir returns true if name is an 8-char hex string (matches shortHash format).
func isHashDir(name string) bool {
	if len(name) != shortHashSize {
		return false
	}
	_, err := hex.DecodeString(name)
	return err == nil
}

// metadataHash hashes the settings that change the outcome of a check
// without being part of the source.
func metadataHash(h hash.Hash, cfg *config.Config) {
	h.Write([]byte(LanguageVersion))
	h.Write([]byte(Version))
	for _, ext := range cfg.Externs {
		fmt.Fprintf(h, "\x00%s(", ext.Name)
		for _, p := range ext.Params {
			fmt.Fprintf(h, "%s:%s,", p.Name, p.Type)
		}
		fmt.Fprintf(h, ")%s", ext.Returns)
	}
}

// resultKey returns the short hash naming the entry directory and the full
// hash stored inside it.
func resultKey(path string, src []byte, cfg *config.Config) (shortHash, fullHash string) {
	h := sha256.New()
	metadataHash(h, cfg)
	fmt.Fprintf(h, "\x00%s\x00", path)
	h.Write(src)
	fullHash = hex.EncodeToString(h.Sum(nil))
	return fullHash[:shortHashSize], fullHash
}

func openResultCache(cacheDir string, out *printer) (*resultCache, error) {
	dir := filepath.Join(cacheDir, RESULTS_DIR)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	rc := &resultCache{dir: dir}

	lock := rc.lock()
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire results lock: %w", err)
	}
	defer lock.Unlock()
	cleanupOldResults(dir, keepResults, minResultAge, out.warnf)
	return rc, nil
}

func (rc *resultCache) lock() *flock.Flock {
	return flock.New(filepath.Join(rc.dir, LOCK_FILE))
}

// load returns the cached diagnostics of path, if its entry matches src.
func (rc *resultCache) load(path string, src []byte, cfg *config.Config) ([]*token.CompileError, bool) {
	shortHash, fullHash := resultKey(path, src, cfg)

	lock := rc.lock()
	if err := lock.RLock(); err != nil {
		return nil, false
	}
	defer lock.Unlock()

	data, err := os.ReadFile(filepath.Join(rc.dir, shortHash, RESULT_FILE))
	if err != nil {
		return nil, false
	}
	var res cachedResult
	if err := yaml.Unmarshal(data, &res); err != nil || res.Hash != fullHash {
		// corrupted entry or a collision, the next store replaces it
		return nil, false
	}
	errs := make([]*token.CompileError, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		errs[i] = &token.CompileError{
			Token: token.Token{FileName: d.File, Line: d.Line, Column: d.Column, Literal: d.Literal},
			Msg:   d.Msg,
		}
	}
	return errs, true
}

// store records the diagnostics of path. The result file is written last
// and acts as the completion marker.
func (rc *resultCache) store(path string, src []byte, cfg *config.Config, errs []*token.CompileError) error {
	shortHash, fullHash := resultKey(path, src, cfg)
	res := cachedResult{Hash: fullHash, Path: path, Diagnostics: make([]cachedDiagnostic, len(errs))}
	for i, e := range errs {
		res.Diagnostics[i] = cachedDiagnostic{
			Line:    e.Token.Line,
			Column:  e.Token.Column,
			Literal: e.Token.Literal,
			File:    e.Token.FileName,
			Msg:     e.Msg,
		}
	}
	data, err := yaml.Marshal(&res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	lock := rc.lock()
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire results lock: %w", err)
	}
	defer lock.Unlock()

	entryDir := filepath.Join(rc.dir, shortHash)
	if err := os.MkdirAll(entryDir, 0755); err != nil {
		return fmt.Errorf("create result dir: %w", err)
	}
	tmp := filepath.Join(entryDir, RESULT_FILE+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(entryDir, RESULT_FILE)); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// cleanupOldResults prunes the entry directories of resultsDir. The keep
// most recently written entries stay, and so does anything younger than
// minAge, which another process may still be reading.
func cleanupOldResults(resultsDir string, keep int, minAge time.Duration, warnf func(format string, args ...any)) {
	entries, err := os.ReadDir(resultsDir)
	if err != nil {
		return
	}
	type entry struct {
		name  string
		mtime time.Time
	}
	var found []entry
	for _, e := range entries {
		if !e.IsDir() || !isHashDir(e.Name()) {
			continue
		}
		if info, err := e.Info(); err == nil {
			found = append(found, entry{e.Name(), info.ModTime()})
		}
	}
	if len(found) <= keep {
		return
	}

	slices.SortFunc(found, func(a, b entry) int { return a.mtime.Compare(b.mtime) })
	cutoff := time.Now().Add(-minAge)
	for _, e := range found[:len(found)-keep] {
		if !e.mtime.Before(cutoff) {
			break
		}
		if err := os.RemoveAll(filepath.Join(resultsDir, e.name)); err != nil {
			warnf("could not remove the cached result %s: %v", e.name, err)
		}
	}
}

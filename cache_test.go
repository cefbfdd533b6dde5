package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pint-lang/pint/config"
	"github.com/pint-lang/pint/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHashDir(t *testing.T) {
	assert.True(t, isHashDir("0123abcd"))
	assert.False(t, isHashDir("0123abc"))
	assert.False(t, isHashDir("0123abcz"))
	assert.False(t, isHashDir(".lock"))
}

func TestResultKey(t *testing.T) {
	cfg := config.Default(".")
	short, full := resultKey("a.pint", []byte("let x: int := 1;"), cfg)
	assert.Len(t, full, 64)
	assert.Equal(t, full[:shortHashSize], short)
	assert.True(t, isHashDir(short))

	_, other := resultKey("b.pint", []byte("let x: int := 1;"), cfg)
	assert.NotEqual(t, full, other, "the path is part of the key")

	withExtern := config.Default(".")
	withExtern.Externs = []config.Extern{{Name: "f", Returns: "int"}}
	_, other = resultKey("a.pint", []byte("let x: int := 1;"), withExtern)
	assert.NotEqual(t, full, other, "externs are part of the key")
}

func TestResultCacheRoundTrip(t *testing.T) {
	rc, err := openResultCache(t.TempDir(), newPrinter(io.Discard, config.ColorNever))
	require.NoError(t, err)
	cfg := config.Default(".")
	src := []byte("let g() -> int { y }")

	_, ok := rc.load("a.pint", src, cfg)
	assert.False(t, ok)

	errs := []*token.CompileError{{
		Token: token.Token{Type: token.IDENT, Literal: "y", FileName: "a.pint", Line: 1, Column: 18},
		Msg:   "no such variable as 'y'",
	}}
	require.NoError(t, rc.store("a.pint", src, cfg, errs))

	got, ok := rc.load("a.pint", src, cfg)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, errs[0].Error(), got[0].Error())

	_, ok = rc.load("a.pint", []byte("let g() -> int { 1 }"), cfg)
	assert.False(t, ok, "a changed source misses")

	require.NoError(t, rc.store("b.pint", []byte("let h() -> int { 1 }"), cfg, nil))
	got, ok = rc.load("b.pint", []byte("let h() -> int { 1 }"), cfg)
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestResultCacheRejectsCollision(t *testing.T) {
	rc, err := openResultCache(t.TempDir(), newPrinter(io.Discard, config.ColorNever))
	require.NoError(t, err)
	cfg := config.Default(".")
	src := []byte("let x: int := 1;")
	short, _ := resultKey("a.pint", src, cfg)

	entry := filepath.Join(rc.dir, short)
	require.NoError(t, os.MkdirAll(entry, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(entry, RESULT_FILE), []byte("hash: other\ndiagnostics: []\n"), 0o644))

	_, ok := rc.load("a.pint", src, cfg)
	assert.False(t, ok)
}

func TestCleanupOldResults(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-30 * 24 * time.Hour)
	names := []string{"00000001", "00000002", "00000003", "00000004"}
	for i, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.Mkdir(path, 0o755))
		mtime := old.Add(time.Duration(i) * time.Hour)
		if name == "00000004" {
			mtime = time.Now()
		}
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "not-a-hash"), 0o755))

	cleanupOldResults(dir, 2, minResultAge, t.Errorf)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	assert.ElementsMatch(t, []string{"00000003", "00000004", "not-a-hash"}, left)
}

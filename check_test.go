package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/pint-lang/pint/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectSources(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.pint", "")
	b := writeFile(t, dir, "sub/b.pint", "")
	writeFile(t, dir, "sub/notes.txt", "")
	writeFile(t, dir, ".hidden/c.pint", "")
	other := writeFile(t, dir, "script.txt", "")

	files, err := collectSources([]string{dir, a, other})
	require.NoError(t, err)
	assert.Equal(t, []string{a, other, b}, files)

	_, err = collectSources([]string{filepath.Join(dir, "missing")})
	assert.ErrorContains(t, err, "reading")
}

func TestCheckSource(t *testing.T) {
	cfg := config.Default(".")

	errs := checkSource("ok.pint", []byte("let main() -> unit { printi(readi()); }"), cfg)
	assert.Empty(t, errs)

	errs = checkSource("parse.pint", []byte("let f() -> int { 1 \nlet g() -> int { y }"), cfg)
	require.NotEmpty(t, errs)
	for _, e := range errs {
		assert.NotContains(t, e.Msg, "no such variable", "files that do not parse are not checked")
	}

	errs = checkSource("type.pint", []byte("let f() -> int { true }"), cfg)
	require.Len(t, errs, 1)
	assert.Equal(t, "type.pint:1:16: tried to return 'bool' from function 'f' returning 'int'", errs[0].Error())
}

func TestCheckAllKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.pint", "b.pint", "c.pint", "d.pint"} {
		files = append(files, writeFile(t, dir, name, "let "+name[:1]+"() -> int { nope }\n"))
	}
	var buf bytes.Buffer
	s := &session{cfg: config.Default(dir), out: newPrinter(&buf, config.ColorNever)}

	results, err := s.checkAll(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, len(files))
	for i, res := range results {
		assert.Equal(t, files[i], res.Path)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, files[i], res.Errors[0].Token.FileName)
		assert.False(t, res.Cached)
	}
}

func TestCheckAllStopsOnCanceledContext(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.pint", "let x: int := 1;\n")
	var buf bytes.Buffer
	s := &session{cfg: config.Default(dir), out: newPrinter(&buf, config.ColorNever)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.checkAll(ctx, []string{file})
	assert.ErrorIs(t, err, context.Canceled)
}

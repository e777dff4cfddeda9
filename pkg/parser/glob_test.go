package parser

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("11:00:00,task,START,1\n"), 0644))
	}
}

func TestExpandGlobs_SingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "jobs.csv")
	file := filepath.Join(dir, "jobs.csv")

	result, err := ExpandGlobs([]string{file})
	require.NoError(t, err)
	assert.Equal(t, []string{file}, result)
}

func TestExpandGlobs_GlobPattern(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.csv", "b.csv", "c.txt")

	result, err := ExpandGlobs([]string{filepath.Join(dir, "*.csv")})
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestExpandGlobs_DoubleStar(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.csv", "nightly/b.csv", "nightly/2024/c.csv", "nightly/readme.md")

	result, err := ExpandGlobs([]string{filepath.Join(dir, "**", "*.csv")})
	require.NoError(t, err)
	assert.Len(t, result, 3)
}

func TestExpandGlobs_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "run.csv/inner.csv")

	result, err := ExpandGlobs([]string{filepath.Join(dir, "*.csv")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "*.csv")}, result, "directory match should be ignored")
}

func TestExpandGlobs_NoMatch(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "*.nonexistent")

	result, err := ExpandGlobs([]string{pattern})
	require.NoError(t, err)
	assert.Equal(t, []string{pattern}, result, "unmatched pattern is returned as-is")
}

func TestExpandGlobs_Deduplication(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "jobs.csv")
	file := filepath.Join(dir, "jobs.csv")

	result, err := ExpandGlobs([]string{file, filepath.Join(dir, "*.csv")})
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestExpandGlobs_InvalidPattern(t *testing.T) {
	_, err := ExpandGlobs([]string{"[invalid"})
	assert.Error(t, err)
}

func TestExpandGlobs_Sorted(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "c.csv", "a.csv", "b.csv")

	result, err := ExpandGlobs([]string{filepath.Join(dir, "*.csv")})
	require.NoError(t, err)
	assert.True(t, sort.StringsAreSorted(result), "result not sorted: %v", result)
}

func TestExpandGlobs_EmptyInput(t *testing.T) {
	result, err := ExpandGlobs([]string{})
	require.NoError(t, err)
	assert.Empty(t, result)
}

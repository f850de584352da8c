package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/taskcards/internal/config"
	"github.com/tsawler/taskcards/taskerr"
	"github.com/tsawler/taskcards/tasks"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTasksCommand(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "none.yaml")

	out, err := run(t, "tasks", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "algebra.PerfectSquaresTask")
	assert.Contains(t, out, "graphs.LinearPlotTask")

	out, err = run(t, "tasks", "-c", cfg, "--category", "geometry")
	require.NoError(t, err)
	assert.NotContains(t, out, "LinearPlotTask")

	_, err = run(t, "tasks", "-c", cfg, "--category", "poetry")
	assert.ErrorIs(t, err, taskerr.ErrConfiguration)
}

func TestGenerateUnknownTask(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "generate", "-c", filepath.Join(dir, "none.yaml"), "-o", filepath.Join(dir, "out"), "NoSuchTask")
	require.Error(t, err)
	assert.Equal(t, 3, taskerr.KindOf(err).ExitCode())

	_, statErr := os.Stat(filepath.Join(dir, "out"))
	assert.ErrorIs(t, statErr, os.ErrNotExist, "lookup must fail before the output directory is reset")
}

func TestGenerateMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "generate", "-c", filepath.Join(dir, "none.yaml"),
		"-o", filepath.Join(dir, "out"),
		"--template", filepath.Join(dir, "missing.png"),
		"PerfectSquaresTask")
	assert.Equal(t, 4, taskerr.KindOf(err).ExitCode())
}

func TestSelectedTasks(t *testing.T) {
	assert.Equal(t, []string{tasks.Default}, selectedTasks(generateOptions{}, nil))
	assert.Empty(t, selectedTasks(generateOptions{categories: []string{"geometry"}}, nil))
	assert.Equal(t, []string{"A", "B"}, selectedTasks(generateOptions{tasks: []string{"A"}}, []string{"B"}))
}

func TestGenerateDefaultTask(t *testing.T) {
	dir := t.TempDir()
	// Without tasks the run gets past selection and fails on the template.
	_, err := run(t, "generate", "-c", filepath.Join(dir, "none.yaml"),
		"-o", filepath.Join(dir, "out"),
		"--template", filepath.Join(dir, "missing.png"))
	assert.Equal(t, 4, taskerr.KindOf(err).ExitCode())
}

func TestGenerateBadCategory(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "generate", "-c", filepath.Join(dir, "none.yaml"), "--category", "poetry")
	assert.Equal(t, 2, taskerr.KindOf(err).ExitCode())
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskcards.yaml")

	out, err := run(t, "init-config", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Raster, cfg.Raster)

	_, err = run(t, "init-config", "-c", path)
	assert.ErrorIs(t, err, taskerr.ErrConfiguration)

	_, err = run(t, "init-config", "-c", path, "--force")
	assert.NoError(t, err)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinLab/pkg/config"
)

func tempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf(`
log:
  level: error
paths:
  raw_dir: %s
  dataset_path: %s
  report_dir: %s
`, filepath.Join(dir, "raw"), filepath.Join(dir, "processed", "model_dataset.parquet"), filepath.Join(dir, "out"))
	p := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func execute(args ...string) error {
	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"download", "build", "train", "run", "serve"})
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestBuildWithoutRawData(t *testing.T) {
	err := execute("--config", tempConfig(t), "build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run download first")
}

func TestTrainWithoutDataset(t *testing.T) {
	err := execute("--config", tempConfig(t), "train")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset not found")
}

func TestSplitFlagsAreValidated(t *testing.T) {
	err := execute("--config", tempConfig(t), "build", "--train-frac", "0.9", "--val-frac", "0.2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid split flags")
}

func TestApplySplitFlagsOverridesConfig(t *testing.T) {
	opts := &rootOptions{}
	cmd := buildCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--train-frac", "0.6"}))

	cfg := config.Default()
	require.NoError(t, applySplitFlags(cmd, cfg, opts))
	assert.Equal(t, 0.6, cfg.Dataset.TrainFrac)
	assert.Equal(t, 0.15, cfg.Dataset.ValFrac)
}

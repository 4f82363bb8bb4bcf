package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`storage:
  backend: csv
  accounts_path: %s
  predictions_path: %s
model:
  artifact_path: %s
  dataset_path: %s
`,
		filepath.Join(dir, "users.csv"),
		filepath.Join(dir, "predictions.csv"),
		filepath.Join(dir, "model.json"),
		filepath.Join(dir, "sample.csv"),
	)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTrainWritesDatasetAndArtifact(t *testing.T) {
	if testing.Short() {
		t.Skip("trains a model")
	}
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	out, err := run(t, "train", "--config", cfg, "--rows", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "accuracy")
	assert.Contains(t, out, "Model saved to")
	assert.FileExists(t, filepath.Join(dir, "sample.csv"))
	assert.FileExists(t, filepath.Join(dir, "model.json"))
}

func TestAccountsAddRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	out, err := run(t, "accounts", "add", "--config", cfg, "--username", "dr_lee", "--password", "s3cret", "--email", "lee@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Account dr_lee created")

	_, err = run(t, "accounts", "add", "--config", cfg, "--username", "dr_lee", "--password", "other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Account already exists")
}

func TestLogMigrateOnMissingLog(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	out, err := run(t, "log", "migrate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "already at schema v3")
}

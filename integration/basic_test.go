//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/lochist/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeDoc struct {
	Repos map[string]struct {
		Measurements map[string]struct {
			Total     int            `json:"total"`
			Languages map[string]int `json:"languages"`
			Commit    string         `json:"commit"`
		} `json:"measurements"`
	} `json:"repos"`
	LastUpdated string `json:"last_updated"`
}

func readStore(t *testing.T, path string) storeDoc {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc storeDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

// TestAccumulateAndSeries drives a full accumulate then series cycle against a JSON store.
func TestAccumulateAndSeries(t *testing.T) {
	skipIfGitNotAvailable(t)

	root := createFixture(t)
	work := t.TempDir()
	storePath := filepath.Join(work, "history.json")

	accumulate := []string{
		"accumulate", root,
		"--start", "2024-03-01", "--end", "2024-03-03",
		"--counter", "builtin",
		"--store", storePath,
		"--workspace-dir", work,
		"--output", "json",
	}

	out := runLochist(t, work, nil, accumulate...)
	var summary schema.AccumulateSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.False(t, summary.Interrupted)
	require.Len(t, summary.Repos, 2)
	assert.Equal(t, "alpha", summary.Repos[0].Name)
	assert.Equal(t, 3, summary.Repos[0].Measured)
	assert.Equal(t, 1, summary.Repos[1].Zero)
	assert.Equal(t, 2, summary.Repos[1].Measured)

	doc := readStore(t, storePath)
	require.Len(t, doc.Repos, 2)
	alpha := doc.Repos["alpha"].Measurements
	assert.Equal(t, 3, alpha["2024-03-01"].Total)
	assert.Equal(t, 3, alpha["2024-03-02"].Total)
	assert.Equal(t, 5, alpha["2024-03-03"].Total)
	assert.Equal(t, map[string]int{"Go": 5}, alpha["2024-03-03"].Languages)
	assert.Len(t, alpha["2024-03-03"].Commit, schema.CommitIDLength)

	beta := doc.Repos["beta"].Measurements
	assert.Equal(t, 0, beta["2024-03-01"].Total)
	assert.Empty(t, beta["2024-03-01"].Commit)
	assert.Equal(t, 1, beta["2024-03-02"].Total)
	assert.NotEmpty(t, doc.LastUpdated)

	// A second run finds everything cached.
	out = runLochist(t, work, nil, accumulate...)
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	for _, r := range summary.Repos {
		assert.Equal(t, 3, r.Cached, r.Name)
		assert.Zero(t, r.Measured, r.Name)
	}

	// No workspace directories are left behind.
	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, e.IsDir(), "leftover workspace %s", e.Name())
	}

	out = runLochist(t, work, nil,
		"series", root,
		"--counter", "builtin",
		"--store", storePath,
		"--months", "2",
		"--fork-repos", "beta",
		"--output", "json",
	)
	var series schema.SeriesResult
	require.NoError(t, json.Unmarshal([]byte(out), &series))
	require.Len(t, series.Labels, 2)
	require.Len(t, series.Repos, 2)
	assert.Equal(t, "alpha", series.Repos[0].Name)
	assert.Equal(t, []int{5, 5}, series.Repos[0].Values())
	assert.True(t, series.Repos[1].Excluded)
	assert.Equal(t, []int{1, 0}, series.Repos[1].Values())
	assert.Equal(t, []int{5, 5}, series.Total)
}

// TestStoreCommandsSQLite exercises migrate, status, export and clear on a SQLite store.
func TestStoreCommandsSQLite(t *testing.T) {
	skipIfGitNotAvailable(t)

	root := createFixture(t)
	work := t.TempDir()
	env := []string{
		"LOCHIST_STORE_BACKEND=sqlite",
		"LOCHIST_STORE_DB_CONNECT=" + filepath.Join(work, "history.db"),
	}

	out := runLochist(t, work, env, "store", "migrate")
	assert.Contains(t, out, "Successfully migrated from version 0 to version 2")

	runLochist(t, work, env,
		"accumulate", root,
		"--start", "2024-03-01", "--end", "2024-03-02",
		"--counter", "builtin",
		"--workspace-dir", work,
	)

	out = runLochist(t, work, env, "store", "status")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Repositories: 2")
	assert.Contains(t, out, "Measurements: 4")
	assert.Contains(t, out, "Schema Version: 2")

	exportBase := filepath.Join(work, "loc")
	runLochist(t, work, env, "store", "export", "--output-file", exportBase)
	assert.FileExists(t, exportBase+".measurements.parquet")
	assert.FileExists(t, exportBase+".languages.parquet")

	out = runLochist(t, work, env, "store", "clear")
	assert.Contains(t, out, "Store cleared successfully.")
	assert.NoFileExists(t, filepath.Join(work, "history.db"))
}

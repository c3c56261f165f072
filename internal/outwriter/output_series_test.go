package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bucketsOf(values ...int) []schema.MonthBucket {
	out := make([]schema.MonthBucket, len(values))
	for i, v := range values {
		start := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
		out[i] = schema.MonthBucket{Label: start.Format("Jan"), Year: start.Year(), Month: start.Month(), Start: start, Value: v}
	}
	return out
}

func sampleSeries() schema.SeriesResult {
	return schema.SeriesResult{
		GeneratedAt: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		Labels:      []string{"Dec", "Jan", "Feb"},
		Repos: []schema.RepoSeries{
			{Name: "api", CreatedAt: time.Date(2021, 4, 2, 9, 0, 0, 0, time.UTC), CurrentTotal: 12500, Buckets: bucketsOf(10000, 11000, 12500)},
			{Name: "vendored", Excluded: true, Buckets: bucketsOf(900, 900, 0)},
		},
		Total: []int{10000, 11000, 12500},
	}
}

func TestWriteSeriesTable(t *testing.T) {
	cfg := &contract.Config{Output: schema.TextOut, Width: 120}

	var buf bytes.Buffer
	require.NoError(t, WriteSeriesResult(&buf, sampleSeries(), cfg, 1500*time.Millisecond))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "REPOSITORY")
	assert.Contains(t, strings.ToUpper(out), "DEC")
	assert.Contains(t, out, "12,500")
	assert.Contains(t, out, "2021-04-02")
	assert.Contains(t, out, "vendored (fork)")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "Series built in 1.5s for 2 repositories (1 excluded).")
}

func TestWriteSeriesJSON(t *testing.T) {
	cfg := &contract.Config{Output: schema.JSONOut}

	var buf bytes.Buffer
	require.NoError(t, WriteSeriesResult(&buf, sampleSeries(), cfg, time.Second))

	var decoded schema.SeriesResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []int{10000, 11000, 12500}, decoded.Total)
	require.Len(t, decoded.Repos, 2)
	assert.True(t, decoded.Repos[1].Excluded)
	assert.Equal(t, []int{900, 900, 0}, decoded.Repos[1].Values())
}

func TestWriteSeriesCSV(t *testing.T) {
	cfg := &contract.Config{Output: schema.CSVOut}

	var buf bytes.Buffer
	require.NoError(t, WriteSeriesResult(&buf, sampleSeries(), cfg, time.Second))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"repo", "excluded", "created_at", "2024-12", "2025-01", "2025-02"}, records[0])
	assert.Equal(t, []string{"api", "false", "2021-04-02", "10000", "11000", "12500"}, records[1])
	assert.Equal(t, []string{"vendored", "true", "", "900", "900", "0"}, records[2])
	assert.Equal(t, []string{"TOTAL", "false", "", "10000", "11000", "12500"}, records[3])
}

func TestWriteSeriesCSVNoRepos(t *testing.T) {
	result := schema.SeriesResult{Labels: []string{"Jan"}, Total: []int{0}}

	var buf bytes.Buffer
	require.NoError(t, writeSeriesCSV(&buf, result))
	assert.Equal(t, "repo,excluded,created_at,Jan\nTOTAL,false,,0\n", buf.String())
}

func TestPrintSeriesResultToFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "series.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: outFile}

	require.NoError(t, PrintSeriesResult(sampleSeries(), cfg, time.Second))

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "{\n  \"generated_at\""))
}

func TestGetMaxTableNameWidth(t *testing.T) {
	assert.Equal(t, 40, GetMaxTableNameWidth(&contract.Config{Width: 200}, 3))
	assert.Equal(t, 12, GetMaxTableNameWidth(&contract.Config{Width: 80}, 12))
	assert.Equal(t, 28, GetMaxTableNameWidth(&contract.Config{Width: 80}, 3))
}

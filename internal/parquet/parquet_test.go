package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/lochist/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStore() *schema.HistoryStore {
	store := schema.NewHistoryStore()
	a := schema.NewRepoHistory()
	a.Measurements["2024-03-02"] = schema.Measurement{Total: 30, Languages: map[string]int{"Go": 20, "Python": 10}, Commit: "cafebabe"}
	a.Measurements["2024-03-01"] = schema.Measurement{Total: 0, Languages: map[string]int{}}
	b := schema.NewRepoHistory()
	b.Measurements["2024-03-01"] = schema.Measurement{Total: 5, Languages: map[string]int{"Rust": 5}, Commit: "deadbeef"}
	store.Repos["beta"] = b
	store.Repos["alpha"] = a
	return store
}

func TestMeasurementStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Measurement))
	require.NotNil(t, s)
	for _, colName := range []string{"repo", "date", "measured_on", "total", "language_count", "commit", "languages"} {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestLanguageLinesStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(LanguageLines))
	require.NotNil(t, s)
	for _, colName := range []string{"repo", "date", "language", "lines"} {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestConvertHistory(t *testing.T) {
	measurements, languages := ConvertHistory(sampleStore())

	require.Len(t, measurements, 3)
	assert.Equal(t, "alpha", measurements[0].Repo)
	assert.Equal(t, "2024-03-01", measurements[0].Date)
	assert.Nil(t, measurements[0].Commit)
	assert.Equal(t, "{}", measurements[0].Languages)
	assert.Equal(t, "2024-03-02", measurements[1].Date)
	require.NotNil(t, measurements[1].Commit)
	assert.Equal(t, "cafebabe", *measurements[1].Commit)
	assert.Equal(t, int32(2), measurements[1].LanguageCount)
	assert.JSONEq(t, `{"Go":20,"Python":10}`, measurements[1].Languages)
	assert.Equal(t, "beta", measurements[2].Repo)

	require.Len(t, languages, 3)
	assert.Equal(t, LanguageLines{Repo: "alpha", Date: "2024-03-02", Language: "Go", Lines: 20}, languages[0])
	assert.Equal(t, "Python", languages[1].Language)
	assert.Equal(t, "Rust", languages[2].Language)
}

func TestConvertHistoryNil(t *testing.T) {
	measurements, languages := ConvertHistory(nil)
	assert.Empty(t, measurements)
	assert.Empty(t, languages)
}

func TestWriteMeasurementsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "measurements.parquet")
	data, _ := ConvertHistory(sampleStore())

	require.NoError(t, WriteMeasurementsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[Measurement](file)
	defer reader.Close()

	readData := make([]Measurement, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)
	for i := range data {
		assert.Equal(t, data[i].Repo, readData[i].Repo)
		assert.Equal(t, data[i].Date, readData[i].Date)
		assert.Equal(t, data[i].Total, readData[i].Total)
		if data[i].Commit == nil {
			assert.Nil(t, readData[i].Commit)
		} else {
			require.NotNil(t, readData[i].Commit)
			assert.Equal(t, *data[i].Commit, *readData[i].Commit)
		}
	}
}

func TestWriteLanguageLinesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "languages.parquet")
	_, data := ConvertHistory(sampleStore())

	require.NoError(t, WriteLanguageLinesParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[LanguageLines](file)
	defer reader.Close()

	readData := make([]LanguageLines, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)
	assert.Equal(t, data, readData)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteMeasurementsParquet([]Measurement{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteLanguageLinesParquet(nil, "/nonexistent/directory/output.parquet")
	require.Error(t, err)
}

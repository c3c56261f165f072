package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/lochist/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput(t *testing.T) *ConfigRawInput {
	t.Helper()
	return &ConfigRawInput{
		Path:    t.TempDir(),
		Output:  "text",
		Counter: "tokei",
		Color:   "no",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "invalid counter", mutate: func(in *ConfigRawInput) { in.Counter = "wc" }, expectError: true},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: true},
		{name: "invalid backend", mutate: func(in *ConfigRawInput) { in.StoreBackend = "redis" }, expectError: true},
		{name: "mysql without dsn", mutate: func(in *ConfigRawInput) { in.StoreBackend = "mysql" }, expectError: true},
		{name: "bad count timeout", mutate: func(in *ConfigRawInput) { in.CountTimeout = "soon" }, expectError: true},
		{name: "negative git timeout", mutate: func(in *ConfigRawInput) { in.GitTimeout = "-1s" }, expectError: true},
		{name: "too many months", mutate: func(in *ConfigRawInput) { in.Months = MaxWindowMonths + 1 }, expectError: true},
		{name: "missing path", mutate: func(in *ConfigRawInput) { in.Path = filepath.Join(in.Path, "nope") }, expectError: true},
		{name: "start after end", mutate: func(in *ConfigRawInput) { in.Start, in.End = "2024-02-01", "2024-01-01" }, expectError: true},
		{name: "bad start", mutate: func(in *ConfigRawInput) { in.Start = "yesterday" }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(t)
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, schema.JSONBackend, cfg.StoreBackend)
			assert.Equal(t, schema.DefaultStoreFile, cfg.StorePath)
			assert.Equal(t, DefaultCountTimeout, cfg.CountTimeout)
			assert.Equal(t, DefaultGitTimeout, cfg.GitTimeout)
			assert.Equal(t, schema.DefaultWindowMonths, cfg.Months)
			assert.True(t, filepath.IsAbs(cfg.RootPath))
		})
	}
}

func TestProcessAndValidateFilePath(t *testing.T) {
	input := validInput(t)
	file := filepath.Join(input.Path, "file.txt")
	require.NoError(t, writeFile(file, "x"))
	input.Path = file

	err := ProcessAndValidate(&Config{}, input)
	assert.ErrorContains(t, err, "not a directory")
}

func TestProcessDateRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.Local)

	tests := []struct {
		name      string
		input     ConfigRawInput
		wantStart string
		wantEnd   string
	}{
		{name: "defaults to one day back", input: ConfigRawInput{}, wantStart: "2024-03-14", wantEnd: "2024-03-15"},
		{name: "days back from today", input: ConfigRawInput{Days: 40}, wantStart: "2024-02-04", wantEnd: "2024-03-15"},
		{name: "days back from end", input: ConfigRawInput{End: "2024-01-10", Days: 9}, wantStart: "2024-01-01", wantEnd: "2024-01-10"},
		{name: "explicit start wins over days", input: ConfigRawInput{Start: "2024-03-01", Days: 90}, wantStart: "2024-03-01", wantEnd: "2024-03-15"},
		{name: "single day", input: ConfigRawInput{Start: "2024-03-15", End: "2024-03-15"}, wantStart: "2024-03-15", wantEnd: "2024-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			require.NoError(t, processDateRange(cfg, &tt.input, now))
			assert.Equal(t, tt.wantStart, schema.FormatDate(cfg.StartDate))
			assert.Equal(t, tt.wantEnd, schema.FormatDate(cfg.EndDate))
		})
	}

	err := processDateRange(&Config{}, &ConfigRawInput{Days: -2}, now)
	assert.Error(t, err)
}

func TestProcessListsAreFolded(t *testing.T) {
	input := validInput(t)
	input.ForkRepos = " Upstream-Lib , ,other"
	input.Repos = "Alpha"
	input.ExcludeLanguages = "Markdown, JSON"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, []string{"upstream-lib", "other"}, cfg.ForkRepos)
	assert.Equal(t, []string{"Markdown", "JSON"}, cfg.ExcludeLanguages)
	assert.True(t, cfg.IsFork("UPSTREAM-LIB"))
	assert.False(t, cfg.IsFork("alpha"))
	assert.True(t, cfg.KeepRepo("alpha"))
	assert.False(t, cfg.KeepRepo("beta"))
	assert.True(t, (&Config{}).KeepRepo("anything"))
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.JSONBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost:3306)/lochist"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "localhost:3306"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=lochist"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{ForkRepos: []string{"a"}, RepoFilter: []string{"b"}, ExcludeLanguages: []string{"c"}}
	clone := cfg.Clone()
	clone.ForkRepos[0] = "changed"
	assert.Equal(t, "a", cfg.ForkRepos[0])
}

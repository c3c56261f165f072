package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/lochist/schema"
)

// Default values for configuration.
const (
	DefaultDays         = 1
	DefaultCountTimeout = 120 * time.Second
	DefaultGitTimeout   = 120 * time.Second
	MaxWindowMonths     = 120
)

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	RootPath string // directory holding the repositories, or a repository itself

	StartDate    time.Time // civil date, midnight UTC
	EndDate      time.Time // civil date, midnight UTC
	Recompute    bool
	WorkspaceDir string // parent of the temporary workspace root ("" = system temp)

	RepoFilter []string // lowercased names to keep ("" = all)
	ForkRepos  []string // lowercased names excluded from totals

	StoreBackend   schema.DatabaseBackend
	StorePath      string // JSON file path for the json backend
	StoreDBConnect string // Please use env var as this is plaintext

	Counter          schema.CounterKind
	CountTimeout     time.Duration
	GitTimeout       time.Duration
	ExcludeLanguages []string

	Months int

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Path             string `mapstructure:"path"`
	StoreBackend     string `mapstructure:"store-backend"`
	Store            string `mapstructure:"store"`
	StoreDBConnect   string `mapstructure:"store-db-connect"`
	Counter          string `mapstructure:"counter"`
	CountTimeout     string `mapstructure:"count-timeout"`
	GitTimeout       string `mapstructure:"git-timeout"`
	ExcludeLanguages string `mapstructure:"exclude-languages"`
	ForkRepos        string `mapstructure:"fork-repos"`
	Repos            string `mapstructure:"repos"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`

	// --- Fields from accumulateCmd.Flags() ---
	Start        string `mapstructure:"start"`
	End          string `mapstructure:"end"`
	Days         int    `mapstructure:"days"`
	Recompute    bool   `mapstructure:"recompute"`
	WorkspaceDir string `mapstructure:"workspace-dir"`

	// --- Fields from seriesCmd.Flags() ---
	Months int `mapstructure:"months"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.RepoFilter = append([]string(nil), c.RepoFilter...)
	clone.ForkRepos = append([]string(nil), c.ForkRepos...)
	clone.ExcludeLanguages = append([]string(nil), c.ExcludeLanguages...)
	return &clone
}

// IsFork reports whether the named repository is excluded from totals.
func (c *Config) IsFork(name string) bool {
	return containsFold(c.ForkRepos, name)
}

// KeepRepo reports whether the named repository passes the --repos filter.
func (c *Config) KeepRepo(name string) bool {
	return len(c.RepoFilter) == 0 || containsFold(c.RepoFilter, name)
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDateRange(cfg, input, time.Now()); err != nil {
		return err
	}
	if err := processStore(cfg, input); err != nil {
		return err
	}
	return resolveRootPath(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.JSONBackend, schema.SQLiteBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Recompute = input.Recompute
	cfg.WorkspaceDir = strings.TrimSpace(input.WorkspaceDir)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	cfg.Counter = schema.CounterKind(strings.ToLower(input.Counter))
	if _, ok := schema.ValidCounterKinds[cfg.Counter]; !ok {
		return fmt.Errorf("invalid counter '%s'. must be tokei, scc, cloc, builtin", input.Counter)
	}

	if cfg.CountTimeout, err = parseTimeout(input.CountTimeout, DefaultCountTimeout); err != nil {
		return fmt.Errorf("invalid --count-timeout: %w", err)
	}
	if cfg.GitTimeout, err = parseTimeout(input.GitTimeout, DefaultGitTimeout); err != nil {
		return fmt.Errorf("invalid --git-timeout: %w", err)
	}

	cfg.Months = input.Months
	if cfg.Months == 0 {
		cfg.Months = schema.DefaultWindowMonths
	}
	if cfg.Months < 1 || cfg.Months > MaxWindowMonths {
		return fmt.Errorf("months must be between 1 and %d (received %d)", MaxWindowMonths, input.Months)
	}

	cfg.ExcludeLanguages = SplitList(input.ExcludeLanguages, false)
	cfg.ForkRepos = SplitList(input.ForkRepos, true)
	cfg.RepoFilter = SplitList(input.Repos, true)
	return nil
}

// processDateRange resolves --start/--end/--days into an inclusive range of calendar days.
// Without --start, the range begins --days before the end date.
func processDateRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.EndDate = schema.CivilDate(now)
	if input.End != "" {
		t, err := schema.ParseDate(input.End)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		cfg.EndDate = t
	}

	if input.Start != "" {
		t, err := schema.ParseDate(input.Start)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		cfg.StartDate = t
	} else {
		days := input.Days
		if days == 0 {
			days = DefaultDays
		}
		if days < 0 {
			return fmt.Errorf("days must not be negative (received %d)", input.Days)
		}
		cfg.StartDate = cfg.EndDate.AddDate(0, 0, -days)
	}

	if cfg.StartDate.After(cfg.EndDate) {
		return fmt.Errorf("start date (%s) cannot be after end date (%s)",
			schema.FormatDate(cfg.StartDate), schema.FormatDate(cfg.EndDate))
	}
	return nil
}

// processStore validates the store backend and its location.
func processStore(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(strings.TrimSpace(input.StoreBackend))
	if backend == "" {
		backend = string(schema.JSONBackend)
	}
	cfg.StoreBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be json, sqlite, mysql, postgresql", input.StoreBackend)
	}

	cfg.StorePath = strings.TrimSpace(input.Store)
	if cfg.StorePath == "" {
		cfg.StorePath = schema.DefaultStoreFile
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// resolveRootPath checks that the repository root exists and is a directory.
func resolveRootPath(cfg *Config, input *ConfigRawInput) error {
	searchPath := strings.TrimSpace(input.Path)
	if searchPath == "" {
		searchPath = "."
	}
	abs, err := filepath.Abs(ExpandHome(searchPath))
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("path not found: %s", abs)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", abs)
	}
	cfg.RootPath = filepath.Clean(abs)
	return nil
}

func parseTimeout(s string, fallback time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive (received %s)", s)
	}
	return d, nil
}

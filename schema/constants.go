package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the backend used by the measurement store.
	DatabaseBackend string

	// CounterKind represents the line-counting backend.
	CounterKind string

	// RepoOutcome represents what happened to a single (repository, date) pair.
	RepoOutcome string
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All store backends supported.
const (
	JSONBackend       DatabaseBackend = "json" // default
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// All line counters supported.
const (
	TokeiCounter   CounterKind = "tokei" // default
	SCCCounter     CounterKind = "scc"
	ClocCounter    CounterKind = "cloc"
	BuiltinCounter CounterKind = "builtin"
)

// Per-date outcomes reported by the accumulation driver.
const (
	OutcomeCached   RepoOutcome = "cached"
	OutcomeZero     RepoOutcome = "zero"
	OutcomeMeasured RepoOutcome = "measured"
	OutcomeSkipped  RepoOutcome = "skipped"
)

// Defaults shared across packages.
const (
	DateLayout          = "2006-01-02" // calendar date used as measurement key
	DefaultStoreFile    = "loc_history.json"
	DefaultWindowMonths = 12
	CommitIDLength      = 8
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	JSONBackend:       {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

// ValidCounterKinds lists all valid line counters.
var ValidCounterKinds = map[CounterKind]struct{}{
	TokeiCounter:   {},
	SCCCounter:     {},
	ClocCounter:    {},
	BuiltinCounter: {},
}

// DefaultExcludedLanguages are aggregate or markup rows that never count as code.
var DefaultExcludedLanguages = []string{"Total", "SUM", "header", "HTML", "SVG"}

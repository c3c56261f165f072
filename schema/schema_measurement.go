package schema

import (
	"encoding/json"
	"sort"
	"time"
)

// Repo identifies a version-controlled source tree taking part in a run.
type Repo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	Excluded  bool      `json:"excluded"` // forks are kept out of totals
}

// Measurement is the size of a repository as of one calendar date.
// A zero Measurement with no commit means the repository had no history yet.
type Measurement struct {
	Date      string         `json:"date"`
	Total     int            `json:"total"`
	Languages map[string]int `json:"languages"`
	Commit    string         `json:"commit,omitempty"`

	// Extra holds fields this version does not know about.
	Extra map[string]json.RawMessage `json:"-"`
}

// IsZero reports whether the measurement records an empty codebase.
func (m Measurement) IsZero() bool {
	return m.Total == 0 && m.Commit == ""
}

// RepoHistory is the date-keyed measurement history of one repository.
type RepoHistory struct {
	Measurements map[string]Measurement    `json:"measurements"`
	Extra        map[string]json.RawMessage `json:"-"`
}

// NewRepoHistory returns an empty history.
func NewRepoHistory() *RepoHistory {
	return &RepoHistory{Measurements: map[string]Measurement{}}
}

// Dates returns the measured dates in ascending order.
func (h *RepoHistory) Dates() []string {
	if h == nil {
		return nil
	}
	dates := make([]string, 0, len(h.Measurements))
	for d := range h.Measurements {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Latest returns the measurement with the greatest date.
func (h *RepoHistory) Latest() (Measurement, bool) {
	dates := h.Dates()
	if len(dates) == 0 {
		return Measurement{}, false
	}
	return h.Measurements[dates[len(dates)-1]], true
}

// HistoryStore is the persisted state: every repository's history plus the time of the last save.
type HistoryStore struct {
	Repos       map[string]*RepoHistory    `json:"repos"`
	LastUpdated time.Time                  `json:"last_updated"`
	Extra       map[string]json.RawMessage `json:"-"`
}

// NewHistoryStore returns an empty store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{Repos: map[string]*RepoHistory{}}
}

// RepoNames returns the repository names in ascending order.
func (s *HistoryStore) RepoNames() []string {
	names := make([]string, 0, len(s.Repos))
	for name := range s.Repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MeasurementCount returns the number of measurements across all repositories.
func (s *HistoryStore) MeasurementCount() int {
	n := 0
	for _, h := range s.Repos {
		n += len(h.Measurements)
	}
	return n
}

// RepoSummary counts the per-date outcomes of one repository in an accumulation run.
type RepoSummary struct {
	Name     string `json:"name"`
	Cached   int    `json:"cached"`
	Zero     int    `json:"zero"`
	Measured int    `json:"measured"`
	Skipped  int    `json:"skipped"`
	SaveErr  string `json:"save_error,omitempty"`
}

// Add increments the counter for the given outcome.
func (r *RepoSummary) Add(o RepoOutcome) {
	switch o {
	case OutcomeCached:
		r.Cached++
	case OutcomeZero:
		r.Zero++
	case OutcomeMeasured:
		r.Measured++
	case OutcomeSkipped:
		r.Skipped++
	}
}

// AccumulateSummary is the outcome of an accumulation run.
type AccumulateSummary struct {
	Start       string        `json:"start"`
	End         string        `json:"end"`
	Repos       []RepoSummary `json:"repos"`
	Interrupted bool          `json:"interrupted"`
}

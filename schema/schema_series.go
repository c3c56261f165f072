package schema

import "time"

// MonthBucket is one calendar month of a series.
type MonthBucket struct {
	Label string     `json:"label"` // "Jan"
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Start time.Time  `json:"start"` // first day of the month
	Value int        `json:"value"`
}

// RepoSeries is the monthly series of one repository.
type RepoSeries struct {
	Name         string        `json:"name"`
	CreatedAt    time.Time     `json:"created_at"`
	Excluded     bool          `json:"excluded"`
	CurrentTotal int           `json:"current_total"`
	Buckets      []MonthBucket `json:"buckets"`
}

// Values returns the bucket values in order.
func (s RepoSeries) Values() []int {
	out := make([]int, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Value
	}
	return out
}

// SeriesResult holds the per-repository series and their total.
type SeriesResult struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Labels      []string     `json:"labels"`
	Repos       []RepoSeries `json:"repos"`
	Total       []int        `json:"total"`
}

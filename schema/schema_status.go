package schema

import "time"

// StoreStatus represents the status of the measurement store.
type StoreStatus struct {
	Backend          string    `json:"backend"`
	Location         string    `json:"location"`
	Connected        bool      `json:"connected"`
	TotalRepos       int       `json:"total_repos"`
	TotalMeasurement int       `json:"total_measurements"`
	OldestDate       string    `json:"oldest_date"`
	NewestDate       string    `json:"newest_date"`
	LastUpdated      time.Time `json:"last_updated"`
	SizeBytes        int64     `json:"size_bytes"`
}

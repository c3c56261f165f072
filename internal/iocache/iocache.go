// Package iocache persists measurement history, either as a JSON document or
// in a SQL database (SQLite, MySQL, PostgreSQL).
package iocache

import (
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
)

// storeBackend is the persistence layer behind MeasurementStoreImpl.
type storeBackend interface {
	// load returns the persisted state. A missing store is not an error.
	load() (*schema.HistoryStore, error)
	// save persists data; dirty lists the measurements changed since the last save.
	save(data *schema.HistoryStore, dirty map[measurementKey]struct{}) error
	status() (schema.StoreStatus, error)
	close() error
}

type measurementKey struct {
	repo string
	date string
}

// MeasurementStoreImpl keeps the history in memory and persists it through a backend.
type MeasurementStoreImpl struct {
	mu      sync.RWMutex
	data    *schema.HistoryStore
	dirty   map[measurementKey]struct{}
	backend storeBackend
	now     func() time.Time
}

var _ contract.MeasurementStore = &MeasurementStoreImpl{} // Compile-time check

// OpenMeasurementStore loads the store for backend. For the json backend path is
// the document location; SQL backends use connStr (SQLite falls back to path, then
// the default DB file). An unreadable JSON document degrades to an empty store.
func OpenMeasurementStore(backend schema.DatabaseBackend, path, connStr string) (*MeasurementStoreImpl, error) {
	var b storeBackend
	switch backend {
	case schema.JSONBackend, "":
		if path == "" {
			path = schema.DefaultStoreFile
		}
		b = &jsonBackend{path: contract.ExpandHome(path)}
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		if backend == schema.SQLiteBackend && connStr == "" {
			connStr = GetDBFilePath()
		}
		sb, err := newSQLBackend(backend, connStr)
		if err != nil {
			return nil, err
		}
		b = sb
	default:
		return nil, fmt.Errorf("unsupported store backend: %s. Must be json, sqlite, mysql, or postgresql", backend)
	}
	return newMeasurementStore(b), nil
}

func newMeasurementStore(b storeBackend) *MeasurementStoreImpl {
	data, err := b.load()
	if err != nil {
		contract.LogWarn("could not load measurement store, starting empty", err)
		data = nil
	}
	if data == nil {
		data = schema.NewHistoryStore()
	}
	if data.Repos == nil {
		data.Repos = map[string]*schema.RepoHistory{}
	}
	return &MeasurementStoreImpl{
		data:    data,
		dirty:   map[measurementKey]struct{}{},
		backend: b,
		now:     time.Now,
	}
}

// Record implements the MeasurementStore interface.
func (s *MeasurementStoreImpl) Record(repo, date string, m schema.Measurement, overwrite bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.data.Repos[repo]
	if !ok || h == nil {
		h = schema.NewRepoHistory()
		s.data.Repos[repo] = h
	}
	if h.Measurements == nil {
		h.Measurements = map[string]schema.Measurement{}
	}
	old, exists := h.Measurements[date]
	if exists && !overwrite {
		return false
	}

	m = copyMeasurement(m)
	m.Date = date
	if exists && m.Extra == nil {
		m.Extra = old.Extra
	}
	h.Measurements[date] = m
	s.dirty[measurementKey{repo: repo, date: date}] = struct{}{}
	return true
}

// Has implements the MeasurementStore interface.
func (s *MeasurementStoreImpl) Has(repo, date string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.data.Repos[repo]
	if !ok || h == nil {
		return false
	}
	_, ok = h.Measurements[date]
	return ok
}

// Save implements the MeasurementStore interface.
func (s *MeasurementStoreImpl) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.LastUpdated = s.now().UTC().Truncate(time.Second)
	if err := s.backend.save(s.data, s.dirty); err != nil {
		return err
	}
	s.dirty = map[measurementKey]struct{}{}
	return nil
}

// History implements the MeasurementStore interface.
func (s *MeasurementStoreImpl) History(repo string) *schema.RepoHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.data.Repos[repo]
	if !ok || h == nil {
		return nil
	}
	return copyHistory(h)
}

// Repos implements the MeasurementStore interface.
func (s *MeasurementStoreImpl) Repos() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.RepoNames()
}

// Snapshot implements the MeasurementStore interface.
func (s *MeasurementStoreImpl) Snapshot() *schema.HistoryStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := &schema.HistoryStore{
		Repos:       make(map[string]*schema.RepoHistory, len(s.data.Repos)),
		LastUpdated: s.data.LastUpdated,
		Extra:       maps.Clone(s.data.Extra),
	}
	for name, h := range s.data.Repos {
		out.Repos[name] = copyHistory(h)
	}
	return out
}

// LastUpdated implements the MeasurementStore interface.
func (s *MeasurementStoreImpl) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.LastUpdated
}

// Status implements the MeasurementStore interface.
func (s *MeasurementStoreImpl) Status() (schema.StoreStatus, error) {
	status, err := s.backend.status()

	s.mu.RLock()
	defer s.mu.RUnlock()
	status.TotalRepos = len(s.data.Repos)
	status.TotalMeasurement = s.data.MeasurementCount()
	status.LastUpdated = s.data.LastUpdated
	var dates []string
	for _, h := range s.data.Repos {
		dates = append(dates, h.Dates()...)
	}
	if len(dates) > 0 {
		sort.Strings(dates)
		status.OldestDate = dates[0]
		status.NewestDate = dates[len(dates)-1]
	}
	return status, err
}

// Close implements the MeasurementStore interface.
func (s *MeasurementStoreImpl) Close() error {
	return s.backend.close()
}

func copyMeasurement(m schema.Measurement) schema.Measurement {
	out := m
	out.Languages = make(map[string]int, len(m.Languages))
	maps.Copy(out.Languages, m.Languages)
	out.Extra = maps.Clone(m.Extra)
	return out
}

func copyHistory(h *schema.RepoHistory) *schema.RepoHistory {
	out := &schema.RepoHistory{
		Measurements: make(map[string]schema.Measurement, len(h.Measurements)),
		Extra:        maps.Clone(h.Extra),
	}
	for date, m := range h.Measurements {
		out.Measurements[date] = copyMeasurement(m)
	}
	return out
}

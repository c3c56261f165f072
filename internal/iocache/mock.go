package iocache

import (
	"time"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
	"github.com/stretchr/testify/mock"
)

// MockMeasurementStore is a mock implementation of MeasurementStore for testing.
type MockMeasurementStore struct {
	mock.Mock
}

var _ contract.MeasurementStore = &MockMeasurementStore{} // Compile-time check

// Record implements the MeasurementStore interface.
func (m *MockMeasurementStore) Record(repo, date string, meas schema.Measurement, overwrite bool) bool {
	args := m.Called(repo, date, meas, overwrite)
	return args.Bool(0)
}

// Has implements the MeasurementStore interface.
func (m *MockMeasurementStore) Has(repo, date string) bool {
	args := m.Called(repo, date)
	return args.Bool(0)
}

// Save implements the MeasurementStore interface.
func (m *MockMeasurementStore) Save() error {
	args := m.Called()
	return args.Error(0)
}

// History implements the MeasurementStore interface.
func (m *MockMeasurementStore) History(repo string) *schema.RepoHistory {
	args := m.Called(repo)
	h, _ := args.Get(0).(*schema.RepoHistory)
	return h
}

// Repos implements the MeasurementStore interface.
func (m *MockMeasurementStore) Repos() []string {
	args := m.Called()
	names, _ := args.Get(0).([]string)
	return names
}

// Snapshot implements the MeasurementStore interface.
func (m *MockMeasurementStore) Snapshot() *schema.HistoryStore {
	args := m.Called()
	s, _ := args.Get(0).(*schema.HistoryStore)
	return s
}

// LastUpdated implements the MeasurementStore interface.
func (m *MockMeasurementStore) LastUpdated() time.Time {
	args := m.Called()
	t, _ := args.Get(0).(time.Time)
	return t
}

// Status implements the MeasurementStore interface.
func (m *MockMeasurementStore) Status() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the MeasurementStore interface.
func (m *MockMeasurementStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

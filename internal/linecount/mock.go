package linecount

import (
	"context"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/stretchr/testify/mock"
)

// MockCounter is a mock implementation of LineCounter for testing.
type MockCounter struct {
	mock.Mock
}

var _ contract.LineCounter = &MockCounter{} // Compile-time check

// Count implements the LineCounter interface.
func (m *MockCounter) Count(ctx context.Context, path string) map[string]int {
	ret := m.Called(ctx, path)
	counts, _ := ret.Get(0).(map[string]int)
	if counts == nil {
		return map[string]int{}
	}
	return counts
}

// Name implements the LineCounter interface.
func (m *MockCounter) Name() string {
	return "mock"
}

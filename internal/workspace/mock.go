package workspace

import (
	"context"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of WorkspaceProvider for testing.
type MockProvider struct {
	mock.Mock
}

var _ contract.WorkspaceProvider = &MockProvider{} // Compile-time check

// For implements the WorkspaceProvider interface.
func (m *MockProvider) For(ctx context.Context, repo schema.Repo) (contract.Workspace, error) {
	ret := m.Called(ctx, repo)
	ws, _ := ret.Get(0).(contract.Workspace)
	return ws, ret.Error(1)
}

// Close implements the WorkspaceProvider interface.
func (m *MockProvider) Close() error {
	return m.Called().Error(0)
}

// MockWorkspace is a mock implementation of Workspace for testing.
type MockWorkspace struct {
	mock.Mock
}

var _ contract.Workspace = &MockWorkspace{} // Compile-time check

// Checkout implements the Workspace interface.
func (m *MockWorkspace) Checkout(ctx context.Context, commit string) error {
	return m.Called(ctx, commit).Error(0)
}

// Path implements the Workspace interface.
func (m *MockWorkspace) Path() string {
	return m.Called().String(0)
}

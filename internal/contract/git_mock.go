package contract

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock type for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	var mockArgs []any
	mockArgs = append(mockArgs, ctx, repoPath)
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// ResolveCommitAtDate implements the GitClient interface.
func (m *MockGitClient) ResolveCommitAtDate(ctx context.Context, repoPath string, date time.Time) (string, error) {
	ret := m.Called(ctx, repoPath, date)
	return ret.String(0), ret.Error(1)
}

// GetFirstCommitTime implements the GitClient interface.
func (m *MockGitClient) GetFirstCommitTime(ctx context.Context, repoPath string) (time.Time, error) {
	ret := m.Called(ctx, repoPath)
	t, _ := ret.Get(0).(time.Time)
	return t, ret.Error(1)
}

// CloneShared implements the GitClient interface.
func (m *MockGitClient) CloneShared(ctx context.Context, src, dest string) error {
	return m.Called(ctx, src, dest).Error(0)
}

// Fetch implements the GitClient interface.
func (m *MockGitClient) Fetch(ctx context.Context, repoPath string) error {
	return m.Called(ctx, repoPath).Error(0)
}

// CheckoutForce implements the GitClient interface.
func (m *MockGitClient) CheckoutForce(ctx context.Context, repoPath, commit string) error {
	return m.Called(ctx, repoPath, commit).Error(0)
}

// Clean implements the GitClient interface.
func (m *MockGitClient) Clean(ctx context.Context, repoPath string) error {
	return m.Called(ctx, repoPath).Error(0)
}

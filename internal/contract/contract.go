// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/lochist/schema"
)

// GitClient defines the Git operations needed to reconstruct history.
// This allows the core logic to be tested without needing a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns its stdout.
	// An empty repoPath runs git in the current directory.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// --- Time / Reference Resolution ---

	// ResolveCommitAtDate returns the most recent commit on HEAD whose committer
	// time is at or before 23:59:59 of the given calendar day. It returns an empty
	// string when no such commit exists, including repositories without commits.
	ResolveCommitAtDate(ctx context.Context, repoPath string, date time.Time) (string, error)

	// GetFirstCommitTime returns the author time of the oldest commit reachable from HEAD.
	GetFirstCommitTime(ctx context.Context, repoPath string) (time.Time, error)

	// --- Workspace ---

	// CloneShared creates a clone of src at dest sharing its object store, without a checkout.
	CloneShared(ctx context.Context, src, dest string) error

	// Fetch refreshes a clone from its origin.
	Fetch(ctx context.Context, repoPath string) error

	// CheckoutForce checks out commit, discarding any local modification.
	CheckoutForce(ctx context.Context, repoPath, commit string) error

	// Clean removes every untracked and ignored file from the working tree.
	Clean(ctx context.Context, repoPath string) error
}

// LineCounter measures the lines of code under a directory, per language.
// Failures yield an empty map, never an error.
type LineCounter interface {
	Count(ctx context.Context, path string) map[string]int
	Name() string
}

// Workspace is a disposable checkout of one repository.
type Workspace interface {
	// Checkout replaces the working tree with the given commit.
	Checkout(ctx context.Context, commit string) error
	Path() string
}

// WorkspaceProvider hands out isolated workspaces and destroys them on Close.
type WorkspaceProvider interface {
	For(ctx context.Context, repo schema.Repo) (Workspace, error)
	Close() error
}

// MeasurementStore defines the interface for measurement history storage.
// This allows mocking the store for testing.
type MeasurementStore interface {
	// Record stores a measurement for (repo, date). An existing entry is only
	// replaced when overwrite is set. It reports whether anything was written.
	Record(repo, date string, m schema.Measurement, overwrite bool) bool

	// Has reports whether a measurement exists for (repo, date).
	Has(repo, date string) bool

	// Save persists the store and updates its last-updated time.
	Save() error

	// History returns a copy of one repository's history, or nil if unknown.
	History(repo string) *schema.RepoHistory

	// Repos returns the known repository names in ascending order.
	Repos() []string

	// Snapshot returns a deep copy of the whole store.
	Snapshot() *schema.HistoryStore

	LastUpdated() time.Time

	// Status returns status information about the store.
	Status() (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

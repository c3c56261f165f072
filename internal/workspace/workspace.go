// Package workspace manages disposable clones used to check out historical
// commits without touching the source repositories.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
)

// ErrClosed is returned by For after the manager has been closed.
var ErrClosed = errors.New("workspace manager is closed")

// Manager owns a private temporary root and one clone per repository under it.
type Manager struct {
	client contract.GitClient
	root   string

	mu     sync.Mutex
	spaces map[string]*Workspace // keyed by source repository path
	closed bool
}

var _ contract.WorkspaceProvider = &Manager{} // Compile-time check

// NewManager creates the temporary root under parentDir ("" = system temp dir).
func NewManager(client contract.GitClient, parentDir string) (*Manager, error) {
	if parentDir != "" {
		if err := os.MkdirAll(parentDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create workspace parent %s: %w", parentDir, err)
		}
	}
	root, err := os.MkdirTemp(parentDir, "lochist-")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace root: %w", err)
	}
	return &Manager{client: client, root: root, spaces: map[string]*Workspace{}}, nil
}

// Root returns the temporary root directory.
func (m *Manager) Root() string {
	return m.root
}

// For returns the workspace of repo, cloning it on first use and fetching on reuse.
func (m *Manager) For(ctx context.Context, repo schema.Repo) (contract.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	if ws, ok := m.spaces[repo.Path]; ok {
		if err := m.client.Fetch(ctx, ws.path); err != nil {
			// Objects are shared with the source, so a stale clone still resolves its commits.
			contract.LogWarn(fmt.Sprintf("could not refresh workspace for %s", repo.Name), err)
		}
		return ws, nil
	}

	dest := filepath.Join(m.root, fmt.Sprintf("%03d-%s", len(m.spaces), dirName(repo.Name)))
	if err := m.client.CloneShared(ctx, repo.Path, dest); err != nil {
		_ = os.RemoveAll(dest)
		return nil, fmt.Errorf("failed to create workspace for %s: %w", repo.Name, err)
	}
	ws := &Workspace{client: m.client, path: dest}
	m.spaces[repo.Path] = ws
	return ws, nil
}

// Close removes the temporary root and everything under it. It is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.spaces = map[string]*Workspace{}
	if err := os.RemoveAll(m.root); err != nil {
		return fmt.Errorf("failed to remove workspace root %s: %w", m.root, err)
	}
	return nil
}

// Workspace is one disposable clone. Its contents are valid until the next Checkout.
type Workspace struct {
	client contract.GitClient
	path   string
}

var _ contract.Workspace = &Workspace{} // Compile-time check

// Checkout force-checks-out commit and removes untracked and ignored files.
func (w *Workspace) Checkout(ctx context.Context, commit string) error {
	if err := w.client.CheckoutForce(ctx, w.path, commit); err != nil {
		return fmt.Errorf("checkout %s: %w", schema.ShortCommit(commit), err)
	}
	if err := w.client.Clean(ctx, w.path); err != nil {
		return fmt.Errorf("clean after checkout %s: %w", schema.ShortCommit(commit), err)
	}
	return nil
}

// Path returns the working tree directory.
func (w *Workspace) Path() string {
	return w.path
}

// dirName makes a repository name safe to use as a single path element.
func dirName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, ". ")
	if name == "" {
		return "repo"
	}
	return name
}

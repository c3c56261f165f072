package workspace

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

func gitCmd(t *testing.T, dir, date string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if date != "" {
		cmd.Env = append(cmd.Env, "GIT_AUTHOR_DATE="+date, "GIT_COMMITTER_DATE="+date)
	}
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// newRepo creates a repository with two commits: v1 adds a.txt, v2 adds b.txt.
func newRepo(t *testing.T) (path, v1, v2 string) {
	t.Helper()
	dir := t.TempDir()
	gitCmd(t, dir, "", "init", "--quiet")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a\n"), 0o644))
	gitCmd(t, dir, "", "add", ".")
	gitCmd(t, dir, "2024-01-01T12:00:00", "commit", "--quiet", "-m", "v1")
	v1 = gitCmd(t, dir, "", "rev-parse", "HEAD")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b\n"), 0o644))
	gitCmd(t, dir, "", "add", ".")
	gitCmd(t, dir, "2024-02-01T12:00:00", "commit", "--quiet", "-m", "v2")
	v2 = gitCmd(t, dir, "", "rev-parse", "HEAD")
	return dir, v1, v2
}

func TestManagerLifecycle(t *testing.T) {
	skipIfGitNotAvailable(t)

	ctx := context.Background()
	src, v1, v2 := newRepo(t)
	// An uncommitted change in the source must survive every checkout.
	require.NoError(t, os.WriteFile(filepath.Join(src, "dirty.txt"), []byte("keep\n"), 0o644))

	m, err := NewManager(contract.NewLocalGitClient(), t.TempDir())
	require.NoError(t, err)
	repo := schema.Repo{Name: "proj", Path: src}

	ws, err := m.For(ctx, repo)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ws.Path(), m.Root()))

	require.NoError(t, ws.Checkout(ctx, v2))
	assert.FileExists(t, filepath.Join(ws.Path(), "b.txt"))

	require.NoError(t, os.WriteFile(filepath.Join(ws.Path(), "scratch.tmp"), []byte("x"), 0o644))
	require.NoError(t, ws.Checkout(ctx, v1))
	assert.FileExists(t, filepath.Join(ws.Path(), "a.txt"))
	assert.NoFileExists(t, filepath.Join(ws.Path(), "b.txt"))
	assert.NoFileExists(t, filepath.Join(ws.Path(), "scratch.tmp"))

	again, err := m.For(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, ws.Path(), again.Path())

	// Source repository is untouched.
	assert.FileExists(t, filepath.Join(src, "dirty.txt"))
	assert.FileExists(t, filepath.Join(src, "b.txt"))
	assert.Equal(t, v2, gitCmd(t, src, "", "rev-parse", "HEAD"))

	require.NoError(t, m.Close())
	assert.NoDirExists(t, m.Root())
	require.NoError(t, m.Close())

	_, err = m.For(ctx, repo)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestManagerCheckoutUnknownCommit(t *testing.T) {
	skipIfGitNotAvailable(t)

	ctx := context.Background()
	src, _, _ := newRepo(t)
	m, err := NewManager(contract.NewLocalGitClient(), "")
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	ws, err := m.For(ctx, schema.Repo{Name: "proj", Path: src})
	require.NoError(t, err)
	assert.Error(t, ws.Checkout(ctx, "0000000000000000000000000000000000000000"))
}

func TestManagerCloneFailure(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("CloneShared", mock.Anything, "/src/a", mock.Anything).Return(errors.New("boom")).Once()
	client.On("CloneShared", mock.Anything, "/src/a", mock.Anything).Return(nil).Once()

	m, err := NewManager(client, t.TempDir())
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	repo := schema.Repo{Name: "a", Path: "/src/a"}
	_, err = m.For(context.Background(), repo)
	assert.ErrorContains(t, err, "boom")

	// The failed clone is not memoized; the next call clones again.
	_, err = m.For(context.Background(), repo)
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestManagerFetchFailureKeepsWorkspace(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("CloneShared", mock.Anything, "/src/a", mock.Anything).Return(nil).Once()
	client.On("Fetch", mock.Anything, mock.Anything).Return(errors.New("offline")).Once()

	m, err := NewManager(client, t.TempDir())
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	repo := schema.Repo{Name: "a", Path: "/src/a"}
	first, err := m.For(context.Background(), repo)
	require.NoError(t, err)
	second, err := m.For(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, first.Path(), second.Path())
	client.AssertExpectations(t)
}

func TestWorkspaceCheckoutErrors(t *testing.T) {
	client := new(contract.MockGitClient)
	ws := &Workspace{client: client, path: "/ws"}

	client.On("CheckoutForce", mock.Anything, "/ws", "deadbeefcafe").Return(errors.New("bad ref")).Once()
	assert.ErrorContains(t, ws.Checkout(context.Background(), "deadbeefcafe"), "checkout deadbeef")

	client.On("CheckoutForce", mock.Anything, "/ws", "abc").Return(nil).Once()
	client.On("Clean", mock.Anything, "/ws").Return(errors.New("locked")).Once()
	assert.ErrorContains(t, ws.Checkout(context.Background(), "abc"), "clean")
	client.AssertExpectations(t)
}

func TestDirName(t *testing.T) {
	assert.Equal(t, "owner_repo", dirName("owner/repo"))
	assert.Equal(t, "repo", dirName(".."))
	assert.Equal(t, "plain", dirName("plain"))
}

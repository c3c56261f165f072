package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/huangsam/lochist/schema"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct {
	// Timeout bounds every git invocation. Zero means no bound.
	Timeout time.Duration
}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// NewLocalGitClientWithTimeout creates a local Git client whose commands are bounded by timeout.
func NewLocalGitClientWithTimeout(timeout time.Duration) *LocalGitClient {
	return &LocalGitClient{Timeout: timeout}
}

// Run executes a git command and returns its stdout.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	var fullArgs []string
	if repoPath != "" {
		fullArgs = append(fullArgs, "-C", repoPath)
	}
	fullArgs = append(fullArgs, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		return nil, fmt.Errorf("git %s in %q aborted: %w", firstArg(args), repoPath, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git %s failed in %q: %s", firstArg(args), repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ResolveCommitAtDate implements the GitClient interface.
func (c *LocalGitClient) ResolveCommitAtDate(ctx context.Context, repoPath string, date time.Time) (string, error) {
	before := fmt.Sprintf("--before=%s 23:59:59", schema.FormatDate(date))
	out, err := c.Run(ctx, repoPath, "rev-list", "-1", before, "HEAD")
	if err != nil {
		// An unborn HEAD makes rev-list fail; that is "no commit", not a failure.
		if ctx.Err() == nil && !c.hasHead(ctx, repoPath) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// hasHead reports whether HEAD resolves to a commit.
func (c *LocalGitClient) hasHead(ctx context.Context, repoPath string) bool {
	_, err := c.Run(ctx, repoPath, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

// GetFirstCommitTime implements the GitClient interface.
func (c *LocalGitClient) GetFirstCommitTime(ctx context.Context, repoPath string) (time.Time, error) {
	out, err := c.Run(ctx, repoPath, "log", "--format=%aI")
	if err != nil {
		return time.Time{}, err
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return time.Time{}, errors.New("no commits found")
	}

	// The last line has the oldest commit's date
	return time.Parse(time.RFC3339, strings.TrimSpace(lines[len(lines)-1]))
}

// CloneShared implements the GitClient interface.
func (c *LocalGitClient) CloneShared(ctx context.Context, src, dest string) error {
	_, err := c.Run(ctx, "", "clone", "--shared", "--quiet", "--no-checkout", src, dest)
	return err
}

// Fetch implements the GitClient interface.
func (c *LocalGitClient) Fetch(ctx context.Context, repoPath string) error {
	_, err := c.Run(ctx, repoPath, "fetch", "--quiet", "origin")
	return err
}

// CheckoutForce implements the GitClient interface.
func (c *LocalGitClient) CheckoutForce(ctx context.Context, repoPath, commit string) error {
	_, err := c.Run(ctx, repoPath, "checkout", "--quiet", "--force", commit)
	return err
}

// Clean implements the GitClient interface.
func (c *LocalGitClient) Clean(ctx context.Context, repoPath string) error {
	_, err := c.Run(ctx, repoPath, "clean", "-fdxq")
	return err
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

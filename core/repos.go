package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
)

// DiscoverRepos returns the immediate subdirectories of root that hold a .git
// entry, sorted case-insensitively. When there are none and root is itself a
// repository, root is the only result.
func DiscoverRepos(root string) ([]schema.Repo, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("path not found: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}

	var repos []schema.Repo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if isRepo(dir) {
			repos = append(repos, schema.Repo{Name: entry.Name(), Path: dir})
		}
	}
	if len(repos) == 0 && isRepo(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			abs = root
		}
		repos = append(repos, schema.Repo{Name: filepath.Base(abs), Path: root})
	}

	sort.SliceStable(repos, func(i, j int) bool {
		a, b := strings.ToLower(repos[i].Name), strings.ToLower(repos[j].Name)
		if a != b {
			return a < b
		}
		return repos[i].Name < repos[j].Name
	})
	return repos, nil
}

// isRepo reports whether dir holds a .git directory or file (worktrees and submodules).
func isRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// SelectRepos applies the --repos filter and flags --fork-repos as excluded.
func SelectRepos(cfg *contract.Config, repos []schema.Repo) []schema.Repo {
	out := make([]schema.Repo, 0, len(repos))
	for _, r := range repos {
		if !cfg.KeepRepo(r.Name) {
			continue
		}
		r.Excluded = cfg.IsFork(r.Name)
		out = append(out, r)
	}
	return out
}

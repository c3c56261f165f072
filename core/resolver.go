package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
)

// ResolveCommit returns the commit that was current at the end of date, or ""
// when the repository had no history yet. Resolution failures are logged and
// treated as "no history" so the caller records a zero measurement.
func ResolveCommit(ctx context.Context, client contract.GitClient, repo schema.Repo, date time.Time) string {
	commit, err := client.ResolveCommitAtDate(ctx, repo.Path, date)
	if err != nil {
		if ctx.Err() == nil {
			contract.LogWarn(fmt.Sprintf("could not resolve %s at %s", repo.Name, schema.FormatDate(date)), err)
		}
		return ""
	}
	return commit
}

// RepoCreatedAt returns the time of the oldest commit of the repository at
// path, or now when the history cannot be read.
func RepoCreatedAt(ctx context.Context, client contract.GitClient, path string, now time.Time) time.Time {
	created, err := client.GetFirstCommitTime(ctx, path)
	if err != nil || created.IsZero() {
		return now
	}
	return created
}

// beforeCreation reports whether the whole calendar day of date precedes createdAt.
func beforeCreation(date, createdAt time.Time) bool {
	if createdAt.IsZero() {
		return false
	}
	return schema.EndOfDay(date, time.Local).Before(createdAt)
}

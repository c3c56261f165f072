package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/internal/linecount"
	"github.com/huangsam/lochist/internal/outwriter"
	"github.com/huangsam/lochist/internal/workspace"
	"github.com/huangsam/lochist/schema"
)

// ExecuteAccumulate extends the measurement history of every selected repository
// over the configured date range and prints a summary.
func ExecuteAccumulate(ctx context.Context, cfg *contract.Config, store contract.MeasurementStore) error {
	start := time.Now()
	repos, err := DiscoverRepos(cfg.RootPath)
	if err != nil {
		return err
	}
	repos = SelectRepos(cfg, repos)

	client := contract.NewLocalGitClientWithTimeout(cfg.GitTimeout)
	mgr, err := workspace.NewManager(client, cfg.WorkspaceDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			contract.LogWarn("could not remove workspaces", err)
		}
	}()

	acc := &Accumulator{
		Client:     client,
		Workspaces: mgr,
		Counter:    linecount.New(cfg.Counter, cfg.CountTimeout, cfg.ExcludeLanguages),
		Store:      store,
		Recompute:  cfg.Recompute,
		Out:        os.Stderr,
	}
	acc.logf("   Using temp directory: %s\n", mgr.Root())

	summary := acc.Run(ctx, repos, schema.DateRange(cfg.StartDate, cfg.EndDate))
	if err := outwriter.PrintAccumulateSummary(summary, cfg, time.Since(start)); err != nil {
		return err
	}
	if summary.Interrupted {
		return fmt.Errorf("accumulation interrupted: %w", context.Cause(ctx))
	}
	return nil
}

// Accumulator measures repositories date by date and records the results.
// It is sequential: one repository at a time, one date at a time.
type Accumulator struct {
	Client     contract.GitClient
	Workspaces contract.WorkspaceProvider
	Counter    contract.LineCounter
	Store      contract.MeasurementStore
	Recompute  bool      // overwrite cached measurements
	Out        io.Writer // progress lines; nil discards them

	now func() time.Time
}

// Run processes every repository over dates. It saves after each repository,
// stops before the next date once ctx is done, and always closes the workspaces.
func (a *Accumulator) Run(ctx context.Context, repos []schema.Repo, dates []time.Time) schema.AccumulateSummary {
	summary := schema.AccumulateSummary{Repos: []schema.RepoSummary{}}
	if len(dates) > 0 {
		summary.Start = schema.FormatDate(dates[0])
		summary.End = schema.FormatDate(dates[len(dates)-1])
	}
	defer func() {
		if err := a.Workspaces.Close(); err != nil {
			contract.LogWarn("could not remove workspaces", err)
		}
	}()

	if !shouldSuppressProgress(ctx) {
		a.logf("📊 Accumulating LOC history from %s to %s\n", summary.Start, summary.End)
		a.logf("   Found %d repositories\n", len(repos))
		a.logf("   Will measure %d snapshots per repo\n", len(dates))
	}

	for _, repo := range repos {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}
		rs, interrupted := a.accumulateRepo(ctx, repo, dates)
		summary.Repos = append(summary.Repos, rs)
		if interrupted {
			summary.Interrupted = true
			break
		}
	}
	return summary
}

// accumulateRepo measures one repository and saves the store. Measurements
// recorded before an interruption are saved too.
func (a *Accumulator) accumulateRepo(ctx context.Context, repo schema.Repo, dates []time.Time) (schema.RepoSummary, bool) {
	rs := schema.RepoSummary{Name: repo.Name}
	a.progress(ctx, "\n📁 %s\n", repo.Name)

	if repo.CreatedAt.IsZero() {
		repo.CreatedAt = RepoCreatedAt(ctx, a.Client, repo.Path, a.clock())
	}

	interrupted := false
	for _, date := range dates {
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		outcome, err := a.measureDate(ctx, repo, date)
		if err != nil {
			interrupted = true
			break
		}
		rs.Add(outcome)
	}

	if err := a.Store.Save(); err != nil {
		contract.LogWarn(fmt.Sprintf("could not save measurements of %s", repo.Name), err)
		rs.SaveErr = err.Error()
	}
	return rs, interrupted
}

// measureDate handles one (repository, date) pair. It only returns an error
// when ctx is done, in which case nothing was recorded.
func (a *Accumulator) measureDate(ctx context.Context, repo schema.Repo, date time.Time) (schema.RepoOutcome, error) {
	key := schema.FormatDate(date)

	if !a.Recompute && a.Store.Has(repo.Name, key) {
		a.progress(ctx, "   %s: cached\n", key)
		return schema.OutcomeCached, nil
	}

	if beforeCreation(date, repo.CreatedAt) {
		a.recordZero(repo, key)
		a.progress(ctx, "   %s: repo not yet created\n", key)
		return schema.OutcomeZero, nil
	}

	commit := ResolveCommit(ctx, a.Client, repo, date)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if commit == "" {
		a.recordZero(repo, key)
		a.progress(ctx, "   %s: no commits yet\n", key)
		return schema.OutcomeZero, nil
	}

	ws, err := a.Workspaces.For(ctx, repo)
	if err == nil {
		err = ws.Checkout(ctx, commit)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		contract.LogWarn(fmt.Sprintf("skipping %s at %s", repo.Name, key), err)
		a.progress(ctx, "   %s: skipped\n", key)
		return schema.OutcomeSkipped, nil
	}

	counts := a.Counter.Count(ctx, ws.Path())
	if err := ctx.Err(); err != nil {
		return "", err
	}
	total := linecount.Total(counts)
	short := schema.ShortCommit(commit)
	a.Store.Record(repo.Name, key, schema.Measurement{
		Total:     total,
		Languages: counts,
		Commit:    short,
	}, a.Recompute)
	a.progress(ctx, "   %s: %s lines (%s)\n", key, humanize.Comma(int64(total)), short)
	return schema.OutcomeMeasured, nil
}

func (a *Accumulator) recordZero(repo schema.Repo, key string) {
	a.Store.Record(repo.Name, key, schema.Measurement{Total: 0, Languages: map[string]int{}}, a.Recompute)
}

func (a *Accumulator) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

func (a *Accumulator) progress(ctx context.Context, format string, args ...any) {
	if shouldSuppressProgress(ctx) {
		return
	}
	a.logf(format, args...)
}

func (a *Accumulator) logf(format string, args ...any) {
	if a.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(a.Out, format, args...)
}

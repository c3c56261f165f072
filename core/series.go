package core

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/internal/linecount"
	"github.com/huangsam/lochist/internal/outwriter"
	"github.com/huangsam/lochist/schema"
)

// ExecuteSeries builds the monthly series of every selected repository and prints it.
func ExecuteSeries(ctx context.Context, cfg *contract.Config, store contract.MeasurementStore) error {
	start := time.Now()
	result, err := BuildSeries(ctx, cfg, store)
	if err != nil {
		return err
	}
	return outwriter.PrintSeriesResult(result, cfg, time.Since(start))
}

// BuildSeries measures the live size of each non-excluded repository, reads its
// creation time and folds its stored history into cfg.Months monthly buckets.
func BuildSeries(ctx context.Context, cfg *contract.Config, store contract.MeasurementStore) (schema.SeriesResult, error) {
	repos, err := DiscoverRepos(cfg.RootPath)
	if err != nil {
		return schema.SeriesResult{}, err
	}
	repos = SelectRepos(cfg, repos)

	now := nowFrom(ctx)
	client := contract.NewLocalGitClientWithTimeout(cfg.GitTimeout)
	counter := linecount.New(cfg.Counter, cfg.CountTimeout, cfg.ExcludeLanguages)

	histories := make(map[string]*schema.RepoHistory, len(repos))
	current := make(map[string]int, len(repos))
	for i := range repos {
		if err := ctx.Err(); err != nil {
			return schema.SeriesResult{}, err
		}
		repo := &repos[i]
		repo.CreatedAt = RepoCreatedAt(ctx, client, repo.Path, now)
		if store != nil {
			histories[repo.Name] = store.History(repo.Name)
		}
		if repo.Excluded {
			if !shouldSuppressProgress(ctx) {
				fmt.Fprintf(os.Stderr, "⏭️  %s: skipping LOC count (fork)\n", repo.Name)
			}
			continue
		}
		current[repo.Name] = linecount.Total(counter.Count(ctx, repo.Path))
		if !shouldSuppressProgress(ctx) {
			fmt.Fprintf(os.Stderr, "📁 %s: %s lines\n", repo.Name, humanize.Comma(int64(current[repo.Name])))
		}
	}

	months := cfg.Months
	if months <= 0 {
		months = schema.DefaultWindowMonths
	}
	return BuildSeriesResult(now, months, repos, histories, current), nil
}

// BuildSeriesResult assembles per-repository series, ordered oldest-created
// first, and their total over non-excluded repositories.
func BuildSeriesResult(now time.Time, windowLength int, repos []schema.Repo, histories map[string]*schema.RepoHistory, current map[string]int) schema.SeriesResult {
	window := MonthWindow(now, windowLength)
	result := schema.SeriesResult{
		GeneratedAt: now,
		Labels:      make([]string, len(window)),
		Repos:       make([]schema.RepoSeries, 0, len(repos)),
	}
	for i, b := range window {
		result.Labels[i] = b.Label
	}

	for _, repo := range repos {
		result.Repos = append(result.Repos, schema.RepoSeries{
			Name:         repo.Name,
			CreatedAt:    repo.CreatedAt,
			Excluded:     repo.Excluded,
			CurrentTotal: current[repo.Name],
			Buckets:      MonthlySeries(histories[repo.Name], now, windowLength, current[repo.Name]),
		})
	}
	sort.SliceStable(result.Repos, func(i, j int) bool {
		a, b := result.Repos[i], result.Repos[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Name < b.Name
	})

	result.Total = TotalSeries(result.Repos, windowLength)
	return result
}

// MonthWindow returns windowLength consecutive calendar months ending at the
// month of now, each starting on its first day. Values are zero.
func MonthWindow(now time.Time, windowLength int) []schema.MonthBucket {
	if windowLength <= 0 {
		return []schema.MonthBucket{}
	}
	last := schema.MonthStart(now)
	out := make([]schema.MonthBucket, windowLength)
	for i := range windowLength {
		start := last.AddDate(0, i-windowLength+1, 0)
		out[i] = schema.MonthBucket{
			Label: start.Format("Jan"),
			Year:  start.Year(),
			Month: start.Month(),
			Start: start,
		}
	}
	return out
}

type datedTotal struct {
	date  time.Time
	total int
}

// MonthlySeries folds a sparse history into windowLength monthly buckets.
// A bucket takes the latest measurement dated inside its month, else the latest
// one dated on or before its first day, else 0. The last bucket is always
// currentTotal. Date keys that do not parse are ignored.
func MonthlySeries(history *schema.RepoHistory, now time.Time, windowLength int, currentTotal int) []schema.MonthBucket {
	buckets := MonthWindow(now, windowLength)
	if len(buckets) == 0 {
		return buckets
	}

	var points []datedTotal
	if history != nil {
		for key, m := range history.Measurements {
			d, err := schema.ParseDate(key)
			if err != nil {
				continue
			}
			points = append(points, datedTotal{date: d, total: m.Total})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].date.Before(points[j].date) })

	for i := range buckets {
		b := &buckets[i]
		next := b.Start.AddDate(0, 1, 0)
		inMonth, carried := -1, -1
		for idx, p := range points {
			switch {
			case p.date.Before(b.Start) || p.date.Equal(b.Start):
				carried = idx
				if p.date.Equal(b.Start) {
					inMonth = idx
				}
			case p.date.Before(next):
				inMonth = idx
			}
		}
		switch {
		case inMonth >= 0:
			b.Value = points[inMonth].total
		case carried >= 0:
			b.Value = points[carried].total
		}
	}

	buckets[len(buckets)-1].Value = currentTotal
	return buckets
}

// TotalSeries sums the bucket values of non-excluded repositories index by index.
func TotalSeries(series []schema.RepoSeries, windowLength int) []int {
	total := make([]int, max(windowLength, 0))
	for _, s := range series {
		if s.Excluded {
			continue
		}
		for i, b := range s.Buckets {
			if i < len(total) {
				total[i] += b.Value
			}
		}
	}
	return total
}

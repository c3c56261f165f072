package linecount

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
)

// ExecCounter runs an external line counter and parses its JSON output.
type ExecCounter struct {
	Kind    schema.CounterKind
	Binary  string // executable name or path
	Timeout time.Duration
	Exclude Denylist

	args  func(path string) []string
	parse func([]byte) (map[string]int, error)
}

var _ contract.LineCounter = &ExecCounter{} // Compile-time check

// NewExecCounter returns a counter for one of the external tools.
func NewExecCounter(kind schema.CounterKind, timeout time.Duration, exclude Denylist) *ExecCounter {
	c := &ExecCounter{Kind: kind, Binary: string(kind), Timeout: timeout, Exclude: exclude}
	switch kind {
	case schema.SCCCounter:
		c.args = func(path string) []string { return []string{"--format", "json", path} }
		c.parse = parseSCC
	case schema.ClocCounter:
		c.args = func(path string) []string { return []string{"--json", "--quiet", path} }
		c.parse = parseCloc
	default:
		c.Kind, c.Binary = schema.TokeiCounter, string(schema.TokeiCounter)
		c.args = func(path string) []string { return []string{"--output", "json", path} }
		c.parse = parseTokei
	}
	return c
}

// Name implements the LineCounter interface.
func (c *ExecCounter) Name() string {
	return string(c.Kind)
}

// Count implements the LineCounter interface.
// A missing tool, timeout, non-zero exit or malformed output yields an empty map.
func (c *ExecCounter) Count(ctx context.Context, path string) map[string]int {
	counts, err := c.run(ctx, path)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("%s could not count %s", c.Kind, path), err)
		return map[string]int{}
	}
	if c.Exclude == nil {
		c.Exclude = NewDenylist(nil)
	}
	return c.Exclude.Filter(counts)
}

func (c *ExecCounter) run(ctx context.Context, path string) (map[string]int, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, c.Binary, c.args(path)...)
	cmd.WaitDelay = time.Second
	out, err := cmd.Output()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("timed out after %s", c.Timeout)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return nil, fmt.Errorf("%s not found on PATH, install it or use --counter builtin", c.Binary)
	}
	if err != nil {
		return nil, err
	}
	return c.parse(out)
}

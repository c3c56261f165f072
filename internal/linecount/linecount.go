// Package linecount measures lines of code per language, either through an
// external counter (tokei, scc, cloc) or an in-process walker.
package linecount

import (
	"strings"
	"time"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
)

// New returns the counter for kind. Unknown kinds fall back to tokei.
func New(kind schema.CounterKind, timeout time.Duration, excludeLanguages []string) contract.LineCounter {
	exclude := NewDenylist(excludeLanguages)
	switch kind {
	case schema.BuiltinCounter:
		return &BuiltinCounter{Timeout: timeout, Exclude: exclude}
	case schema.SCCCounter:
		return NewExecCounter(schema.SCCCounter, timeout, exclude)
	case schema.ClocCounter:
		return NewExecCounter(schema.ClocCounter, timeout, exclude)
	default:
		return NewExecCounter(schema.TokeiCounter, timeout, exclude)
	}
}

// Denylist holds language names dropped from every count.
type Denylist map[string]struct{}

// NewDenylist returns the fixed aggregate/markup rows plus extra.
func NewDenylist(extra []string) Denylist {
	d := Denylist{}
	for _, lang := range schema.DefaultExcludedLanguages {
		d[lang] = struct{}{}
	}
	for _, lang := range extra {
		if lang = strings.TrimSpace(lang); lang != "" {
			d[lang] = struct{}{}
		}
	}
	return d
}

// Has reports whether lang is denied.
func (d Denylist) Has(lang string) bool {
	_, ok := d[lang]
	return ok
}

// Filter drops denied languages and non-positive counts. The result is never nil.
func (d Denylist) Filter(counts map[string]int) map[string]int {
	out := make(map[string]int, len(counts))
	for lang, n := range counts {
		if n <= 0 || d.Has(lang) {
			continue
		}
		out[lang] = n
	}
	return out
}

// Total sums all language counts.
func Total(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

package linecount

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
	"github.com/src-d/enry/v2"
)

// maxFileSize skips generated blobs and data dumps.
const maxFileSize = 2 << 20

// lineComments maps a language to its line-comment prefixes.
// Block comments are counted as code.
var lineComments = map[string][]string{
	"Go": {"//"}, "C": {"//"}, "C++": {"//"}, "C#": {"//"}, "Java": {"//"},
	"JavaScript": {"//"}, "TypeScript": {"//"}, "TSX": {"//"}, "Rust": {"//"},
	"Swift": {"//"}, "Kotlin": {"//"}, "Scala": {"//"}, "Dart": {"//"},
	"Objective-C": {"//"}, "PHP": {"//", "#"}, "Groovy": {"//"}, "Zig": {"//"},
	"Python": {"#"}, "Shell": {"#"}, "Ruby": {"#"}, "Perl": {"#"}, "R": {"#"},
	"Makefile": {"#"}, "Dockerfile": {"#"}, "YAML": {"#"}, "TOML": {"#"},
	"CMake": {"#"}, "PowerShell": {"#"}, "Nix": {"#"}, "Elixir": {"#"},
	"SQL": {"--"}, "PLpgSQL": {"--"}, "Lua": {"--"}, "Haskell": {"--"}, "Elm": {"--"},
	"Emacs Lisp": {";"}, "Clojure": {";"}, "Common Lisp": {";"}, "Scheme": {";"},
	"Erlang": {"%"}, "TeX": {"%"}, "MATLAB": {"%"},
	"Vim script": {"\""}, "Fortran": {"!"}, "Assembly": {";"},
}

// BuiltinCounter walks a tree in-process, detecting languages with enry and
// counting non-blank lines that are not pure line comments.
type BuiltinCounter struct {
	Timeout time.Duration
	Exclude Denylist
}

var _ contract.LineCounter = &BuiltinCounter{} // Compile-time check

// Name implements the LineCounter interface.
func (c *BuiltinCounter) Name() string {
	return string(schema.BuiltinCounter)
}

// Count implements the LineCounter interface.
func (c *BuiltinCounter) Count(ctx context.Context, root string) map[string]int {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	if c.Exclude == nil {
		c.Exclude = NewDenylist(nil)
	}

	counts := map[string]int{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" || enry.IsDotFile(rel) || enry.IsVendor(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || enry.IsVendor(rel) || enry.IsDotFile(rel) || enry.IsDocumentation(rel) {
			return nil
		}

		lang, lines := countFile(path)
		if lang != "" && lines > 0 && !c.Exclude.Has(lang) {
			counts[lang] += lines
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s", c.Timeout)
		}
		contract.LogWarn(fmt.Sprintf("builtin could not count %s", root), err)
		return map[string]int{}
	}
	return c.Exclude.Filter(counts)
}

// countFile detects the language of one file and counts its code lines.
func countFile(path string) (string, int) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 || info.Size() > maxFileSize {
		return "", 0
	}
	content, err := os.ReadFile(path)
	if err != nil || enry.IsBinary(content) {
		return "", 0
	}
	lang := enry.GetLanguage(filepath.Base(path), content)
	if lang == "" {
		return "", 0
	}
	switch enry.GetLanguageType(lang) {
	case enry.Programming, enry.Markup:
	default:
		return "", 0
	}
	return lang, countCodeLines(content, lineComments[lang])
}

// countCodeLines counts lines that are neither blank nor a line comment.
func countCodeLines(content []byte, prefixes []string) int {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), maxFileSize)
	n := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || hasAnyPrefix(line, prefixes) {
			continue
		}
		n++
	}
	return n
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

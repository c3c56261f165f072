package linecount

import (
	"encoding/json"
	"fmt"
)

// parseTokei reads `tokei --output json`: {"Go": {"code": 120, ...}, "Total": {...}}.
func parseTokei(data []byte) (map[string]int, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode tokei output: %w", err)
	}
	return codeByLanguage(raw, "code"), nil
}

// parseCloc reads `cloc --json`: {"header": {...}, "Go": {"code": 120}, "SUM": {...}}.
func parseCloc(data []byte) (map[string]int, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode cloc output: %w", err)
	}
	return codeByLanguage(raw, "code"), nil
}

// parseSCC reads `scc --format json`: [{"Name": "Go", "Code": 120}, ...].
func parseSCC(data []byte) (map[string]int, error) {
	var rows []struct {
		Name string `json:"Name"`
		Code int    `json:"Code"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode scc output: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Name] += r.Code
	}
	return out, nil
}

// codeByLanguage extracts an integer field from every object-valued entry.
// Entries that are not objects (or lack the field) are skipped.
func codeByLanguage(raw map[string]json.RawMessage, field string) map[string]int {
	out := make(map[string]int, len(raw))
	for lang, msg := range raw {
		var info map[string]json.RawMessage
		if err := json.Unmarshal(msg, &info); err != nil {
			continue
		}
		var n int
		if v, ok := info[field]; !ok || json.Unmarshal(v, &n) != nil {
			continue
		}
		out[lang] = n
	}
	return out
}

package iocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/lochist/schema"
)

// Known keys of the JSON document; anything else is carried through untouched.
const (
	keyRepos        = "repos"
	keyLastUpdated  = "last_updated"
	keyMeasurements = "measurements"
	keyTotal        = "total"
	keyLanguages    = "languages"
	keyCommit       = "commit"
)

// jsonBackend stores the whole history as one indented JSON document.
type jsonBackend struct {
	path string
}

func (b *jsonBackend) load() (*schema.HistoryStore, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return schema.NewHistoryStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.path, err)
	}
	store, err := decodeHistory(data)
	if err != nil {
		// Keep the unreadable document aside so the next save cannot destroy it.
		backup := fmt.Sprintf("%s.corrupt-%d", b.path, time.Now().Unix())
		if renameErr := os.Rename(b.path, backup); renameErr == nil {
			err = fmt.Errorf("%w (moved to %s)", err, backup)
		}
		return nil, fmt.Errorf("failed to parse %s: %w", b.path, err)
	}
	return store, nil
}

// save writes the document to a temp file in the same directory and renames it
// over the previous one, so a crash leaves either the old or the new document.
func (b *jsonBackend) save(data *schema.HistoryStore, _ map[measurementKey]struct{}) error {
	payload, err := encodeHistory(data)
	if err != nil {
		return err
	}
	return writeFileAtomic(b.path, payload)
}

func (b *jsonBackend) status() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:  string(schema.JSONBackend),
		Location: b.path,
	}
	info, err := os.Stat(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return status, nil
	}
	if err != nil {
		return status, fmt.Errorf("failed to stat %s: %w", b.path, err)
	}
	status.Connected = true
	status.SizeBytes = info.Size()
	return status, nil
}

func (b *jsonBackend) close() error { return nil }

func writeFileAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// encodeHistory renders the store with sorted keys at every level.
func encodeHistory(data *schema.HistoryStore) ([]byte, error) {
	repos := make(map[string]any, len(data.Repos))
	for name, h := range data.Repos {
		if h == nil {
			h = schema.NewRepoHistory()
		}
		measurements := make(map[string]any, len(h.Measurements))
		for date, m := range h.Measurements {
			measurements[date] = encodeMeasurement(m)
		}
		repo := withExtra(h.Extra)
		repo[keyMeasurements] = measurements
		repos[name] = repo
	}

	doc := withExtra(data.Extra)
	doc[keyRepos] = repos
	if data.LastUpdated.IsZero() {
		doc[keyLastUpdated] = nil
	} else {
		doc[keyLastUpdated] = data.LastUpdated.UTC().Format(time.RFC3339)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode measurement history: %w", err)
	}
	return append(out, '\n'), nil
}

func encodeMeasurement(m schema.Measurement) map[string]any {
	out := withExtra(m.Extra)
	languages := m.Languages
	if languages == nil {
		languages = map[string]int{}
	}
	out[keyTotal] = m.Total
	out[keyLanguages] = languages
	if m.Commit != "" {
		out[keyCommit] = m.Commit
	}
	return out
}

func withExtra(extra map[string]json.RawMessage) map[string]any {
	out := make(map[string]any, len(extra)+3)
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// decodeHistory parses a document, keeping unknown fields at every level.
func decodeHistory(data []byte) (*schema.HistoryStore, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	if top == nil {
		return nil, errors.New("document is not a JSON object")
	}

	store := schema.NewHistoryStore()
	if raw, ok := top[keyLastUpdated]; ok {
		var ts *string
		if err := json.Unmarshal(raw, &ts); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", keyLastUpdated, err)
		}
		if ts != nil && *ts != "" {
			// Unparseable timestamps are dropped; the next save rewrites them.
			if t, err := time.Parse(time.RFC3339Nano, *ts); err == nil {
				store.LastUpdated = t
			}
		}
		delete(top, keyLastUpdated)
	}

	if raw, ok := top[keyRepos]; ok {
		var repos map[string]json.RawMessage
		if err := json.Unmarshal(raw, &repos); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", keyRepos, err)
		}
		for name, rawRepo := range repos {
			h, err := decodeRepo(rawRepo)
			if err != nil {
				return nil, fmt.Errorf("repo %q: %w", name, err)
			}
			store.Repos[name] = h
		}
		delete(top, keyRepos)
	}
	store.Extra = nonEmpty(top)
	return store, nil
}

func decodeRepo(data []byte) (*schema.RepoHistory, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	h := schema.NewRepoHistory()
	if raw, ok := fields[keyMeasurements]; ok {
		var measurements map[string]json.RawMessage
		if err := json.Unmarshal(raw, &measurements); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", keyMeasurements, err)
		}
		for date, rawM := range measurements {
			m, err := decodeMeasurement(rawM)
			if err != nil {
				return nil, fmt.Errorf("measurement %s: %w", date, err)
			}
			m.Date = date
			h.Measurements[date] = m
		}
		delete(fields, keyMeasurements)
	}
	h.Extra = nonEmpty(fields)
	return h, nil
}

func decodeMeasurement(data []byte) (schema.Measurement, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return schema.Measurement{}, err
	}
	m := schema.Measurement{Languages: map[string]int{}}
	if raw, ok := fields[keyTotal]; ok {
		if err := json.Unmarshal(raw, &m.Total); err != nil {
			return m, fmt.Errorf("invalid %s: %w", keyTotal, err)
		}
		delete(fields, keyTotal)
	}
	if raw, ok := fields[keyLanguages]; ok {
		var langs map[string]int
		if err := json.Unmarshal(raw, &langs); err != nil {
			return m, fmt.Errorf("invalid %s: %w", keyLanguages, err)
		}
		for k, v := range langs {
			m.Languages[k] = v
		}
		delete(fields, keyLanguages)
	}
	if raw, ok := fields[keyCommit]; ok {
		var commit *string
		if err := json.Unmarshal(raw, &commit); err != nil {
			return m, fmt.Errorf("invalid %s: %w", keyCommit, err)
		}
		if commit != nil {
			m.Commit = *commit
		}
		delete(fields, keyCommit)
	}
	m.Extra = nonEmpty(fields)
	return m, nil
}

func nonEmpty(m map[string]json.RawMessage) map[string]json.RawMessage {
	if len(m) == 0 {
		return nil
	}
	return m
}

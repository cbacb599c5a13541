package bayes

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// artifactFormat is bumped on incompatible layout changes
const artifactFormat = 1

type artifact struct {
	Format    int                      `json:"format"`
	Version   string                   `json:"version"`
	TrainedAt time.Time                `json:"trained_at"`
	Docs      map[Class]int            `json:"docs"`
	Words     map[Class]map[string]int `json:"words"`
}

// Save writes the model as a JSON artifact
func (m *Model) Save(w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a := artifact{
		Format:    artifactFormat,
		Version:   m.version,
		TrainedAt: time.Now().UTC(),
		Docs:      m.docs,
		Words:     m.words,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("bayes: encode artifact: %w", err)
	}
	return nil
}

// Load reads a JSON artifact written by Save
func Load(r io.Reader) (*Model, error) {
	var a artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("bayes: parse artifact: %w", err)
	}
	if a.Format != artifactFormat {
		return nil, fmt.Errorf("bayes: unsupported artifact format %d (want %d)", a.Format, artifactFormat)
	}

	m := New(a.Version)
	for c, n := range a.Docs {
		if _, ok := m.words[c]; ok {
			m.docs[c] = n
		}
	}
	for c, words := range a.Words {
		dst, ok := m.words[c]
		if !ok {
			continue
		}
		for t, n := range words {
			dst[t] = n
			m.totals[c] += n
			m.vocab[t] = struct{}{}
		}
	}
	return m, nil
}

// SaveFile writes the artifact to path, creating parent directories
func (m *Model) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("bayes: mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bayes: create %s: %w", path, err)
	}
	if err := m.Save(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads an artifact from path
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bayes: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// internal/adapter/kbfile/store.go

package kbfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"playerpulse/internal/domain/player"
)

// Store persists the knowledge base as a JSON array in a single file
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a file store for path. The file does not need to exist yet.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads every player from the file. A missing file is an empty knowledge base.
func (s *Store) Load() ([]player.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []player.Player{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading knowledge base file: %w", err)
	}

	var players []player.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("error parsing knowledge base file %s: %w", s.path, err)
	}

	for i := range players {
		if players[i].Nicknames == nil {
			players[i].Nicknames = []string{}
		}
	}

	return players, nil
}

// Save rewrites the whole file. The new content is written to a temporary
// file in the same directory and renamed over the old one.
func (s *Store) Save(players []player.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]player.Player, len(players))
	for i, p := range players {
		if p.Nicknames == nil {
			p.Nicknames = []string{}
		}
		out[i] = p
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding knowledge base: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating knowledge base directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary knowledge base file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("error writing knowledge base: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error writing knowledge base: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error replacing knowledge base file: %w", err)
	}

	return nil
}

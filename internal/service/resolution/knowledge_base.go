// internal/service/resolution/knowledge_base.go

package resolution

import (
	"fmt"
	"strings"
	"sync"

	"playerpulse/internal/domain/player"
)

// Persister loads and rewrites the durable knowledge base
type Persister interface {
	Load() ([]player.Player, error)
	Save(players []player.Player) error
}

// KnowledgeBase owns the known players and the alias map built from them.
// Every successful mutation is written through to the persister before it
// becomes visible in memory.
type KnowledgeBase struct {
	mu        sync.RWMutex
	players   []player.Player
	byName    map[string]int    // normalized canonical name -> index in players
	aliases   map[string]string // normalized alias -> canonical name
	persister Persister
}

// NewKnowledgeBase loads the persisted players and builds the alias map
func NewKnowledgeBase(persister Persister) (*KnowledgeBase, error) {
	kb := &KnowledgeBase{
		byName:    make(map[string]int),
		aliases:   make(map[string]string),
		persister: persister,
	}

	players, err := persister.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading knowledge base: %w", err)
	}

	for _, p := range players {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		// First occurrence of a canonical name wins
		if _, exists := kb.byName[p.Key()]; exists {
			continue
		}
		kb.players = append(kb.players, clonePlayer(p))
		kb.index(len(kb.players) - 1)
	}

	return kb, nil
}

// Lookup returns the player an alias or canonical name maps to
func (kb *KnowledgeBase) Lookup(alias string) (player.Player, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	name, ok := kb.aliases[player.Normalize(alias)]
	if !ok {
		return player.Player{}, false
	}
	i, ok := kb.byName[player.Normalize(name)]
	if !ok {
		return player.Player{}, false
	}
	return clonePlayer(kb.players[i]), true
}

// MatchSubstring returns the first player, in insertion order, whose canonical
// name contains the query or is contained in it. This is a loose heuristic and
// can match unrelated players whose names overlap.
func (kb *KnowledgeBase) MatchSubstring(query string) (player.Player, bool) {
	q := player.Normalize(query)
	if q == "" {
		return player.Player{}, false
	}

	kb.mu.RLock()
	defer kb.mu.RUnlock()

	for _, p := range kb.players {
		name := p.Key()
		if strings.Contains(name, q) || strings.Contains(q, name) {
			return clonePlayer(p), true
		}
	}
	return player.Player{}, false
}

// Get returns the player with the given canonical name
func (kb *KnowledgeBase) Get(name string) (player.Player, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	i, ok := kb.byName[player.Normalize(name)]
	if !ok {
		return player.Player{}, false
	}
	return clonePlayer(kb.players[i]), true
}

// Add appends a new player and persists the knowledge base. A player whose
// canonical name already exists is rejected with ErrDuplicatePlayer and the
// existing record is returned.
func (kb *KnowledgeBase) Add(p player.Player) (player.Player, error) {
	p = clonePlayer(p)
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return player.Player{}, fmt.Errorf("player name is required")
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	if i, exists := kb.byName[p.Key()]; exists {
		return clonePlayer(kb.players[i]), player.ErrDuplicatePlayer
	}

	next := append(kb.snapshotLocked(), p)
	if err := kb.persister.Save(next); err != nil {
		return player.Player{}, fmt.Errorf("error saving knowledge base: %w", err)
	}

	kb.players = append(kb.players, p)
	kb.index(len(kb.players) - 1)

	return clonePlayer(p), nil
}

// AddAliases attaches new nicknames to an existing player and persists the
// knowledge base when anything changed. Aliases already mapped to another
// player are skipped. It returns the number of aliases added.
func (kb *KnowledgeBase) AddAliases(name string, aliases []string) (int, error) {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	i, ok := kb.byName[player.Normalize(name)]
	if !ok {
		return 0, player.ErrNotFound
	}

	updated := clonePlayer(kb.players[i])
	known := make(map[string]struct{}, len(updated.Nicknames))
	for _, n := range updated.Nicknames {
		known[player.Normalize(n)] = struct{}{}
	}

	var newKeys []string
	for _, alias := range aliases {
		key := player.Normalize(alias)
		if key == "" || key == updated.Key() {
			continue
		}
		if _, dup := known[key]; dup {
			continue
		}
		if owner, taken := kb.aliases[key]; taken && player.Normalize(owner) != updated.Key() {
			continue
		}
		known[key] = struct{}{}
		updated.Nicknames = append(updated.Nicknames, strings.TrimSpace(alias))
		newKeys = append(newKeys, key)
	}
	if len(newKeys) == 0 {
		return 0, nil
	}

	next := kb.snapshotLocked()
	next[i] = updated
	if err := kb.persister.Save(next); err != nil {
		return 0, fmt.Errorf("error saving knowledge base: %w", err)
	}

	// Only the new aliases are registered; re-indexing the whole player would
	// take back nicknames that later players claimed
	kb.players[i] = updated
	for _, key := range newKeys {
		kb.aliases[key] = updated.Name
	}

	return len(newKeys), nil
}

// Snapshot returns a copy of all players in insertion order
func (kb *KnowledgeBase) Snapshot() []player.Player {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	return kb.snapshotLocked()
}

// Aliases returns a copy of the alias map
func (kb *KnowledgeBase) Aliases() map[string]string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	out := make(map[string]string, len(kb.aliases))
	for k, v := range kb.aliases {
		out[k] = v
	}
	return out
}

// Len returns the number of known players
func (kb *KnowledgeBase) Len() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	return len(kb.players)
}

// index registers the canonical name and nicknames of players[i].
// Canonical names always resolve to themselves; a nickname shared by two
// players points at whichever was indexed last.
func (kb *KnowledgeBase) index(i int) {
	p := kb.players[i]
	key := p.Key()

	kb.byName[key] = i
	kb.aliases[key] = p.Name

	for _, nickname := range p.Nicknames {
		alias := player.Normalize(nickname)
		if alias == "" {
			continue
		}
		if _, isCanonical := kb.byName[alias]; isCanonical && alias != key {
			continue
		}
		kb.aliases[alias] = p.Name
	}
}

func (kb *KnowledgeBase) snapshotLocked() []player.Player {
	out := make([]player.Player, len(kb.players))
	for i, p := range kb.players {
		out[i] = clonePlayer(p)
	}
	return out
}

func clonePlayer(p player.Player) player.Player {
	if p.Nicknames != nil {
		p.Nicknames = append([]string(nil), p.Nicknames...)
	}
	return p
}

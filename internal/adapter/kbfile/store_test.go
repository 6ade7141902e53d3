package kbfile

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerpulse/internal/domain/player"
	"playerpulse/internal/service/resolution"
)

func TestLoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "players.json"))

	players, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, players, "Expected missing file to load as an empty knowledge base")
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path).Load()
	assert.Error(t, err)
}

func TestSaveWritesIndentedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "players.json")
	s := NewStore(path)

	err := s.Save([]player.Player{{Name: "Josh Allen", Team: "Buffalo Bills", Position: "QB"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Josh Allen","team":"Buffalo Bills","position":"QB","nicknames":[]}]`, string(data))
	assert.Contains(t, string(data), "\n  {\n    \"name\"", "Expected two-space indentation")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "Expected no temporary files to be left behind")
}

func TestKnowledgeBaseRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.json")

	kb, err := resolution.NewKnowledgeBase(NewStore(path))
	require.NoError(t, err)

	added := []player.Player{
		{Name: "Patrick Mahomes", Team: "Kansas City Chiefs", Position: "QB", Nicknames: []string{"Mahomes", "Showtime"}},
		{Name: "Travis Kelce", Team: "Kansas City Chiefs", Position: "TE", Nicknames: []string{"Big Yeti"}},
		{Name: "Justin Jefferson", Team: "Minnesota Vikings", Position: "WR", Nicknames: []string{"Jets", "JJettas"}},
	}
	for _, p := range added {
		_, err := kb.Add(p)
		require.NoError(t, err)
	}

	reloaded, err := resolution.NewKnowledgeBase(NewStore(path))
	require.NoError(t, err)

	names := func(players []player.Player) []string {
		out := make([]string, 0, len(players))
		for _, p := range players {
			out = append(out, p.Name)
		}
		sort.Strings(out)
		return out
	}
	assert.Equal(t, names(added), names(reloaded.Snapshot()), "Expected same players after reload")
	assert.Equal(t, kb.Aliases(), reloaded.Aliases(), "Expected same alias map after reload")
}

func TestKnowledgeBaseRoundTripSharedAlias(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.json")

	kb, err := resolution.NewKnowledgeBase(NewStore(path))
	require.NoError(t, err)

	_, err = kb.Add(player.Player{Name: "Patrick Mahomes", Team: "Kansas City Chiefs", Position: "QB", Nicknames: []string{"Mahomes"}})
	require.NoError(t, err)
	_, err = kb.Add(player.Player{Name: "Josh Allen", Team: "Buffalo Bills", Position: "QB", Nicknames: []string{"QB1"}})
	require.NoError(t, err)

	n, err := kb.AddAliases("Patrick Mahomes", []string{"QB1", "Showtime"})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "Expected alias owned by another player to be skipped")

	p, ok := kb.Lookup("qb1")
	require.True(t, ok)
	assert.Equal(t, "Josh Allen", p.Name)

	reloaded, err := resolution.NewKnowledgeBase(NewStore(path))
	require.NoError(t, err)
	assert.Equal(t, kb.Aliases(), reloaded.Aliases(), "Expected same alias map after reload")
}

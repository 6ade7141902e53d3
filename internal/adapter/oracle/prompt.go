// internal/adapter/oracle/prompt.go

package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"playerpulse/internal/domain/player"
)

const promptTemplate = `You are an NFL expert. A user has mentioned a player with this query: %q

Here is our current knowledge base of NFL players:
%s

Find the matching NFL player. If the query doesn't match anyone in the knowledge base, use your knowledge to find the most likely NFL player matching this nickname or abbreviation.

Return ONLY a JSON object with this exact format (no markdown, just JSON):
{
  "name": "Full Player Name",
  "team": "Team Name",
  "position": "Position",
  "nicknames": [%s]
}

If you cannot identify a player, return:
{"error": "Player not found"}`

// reply is the JSON object the model is asked to return
type reply struct {
	Name      string   `json:"name"`
	Team      string   `json:"team"`
	Position  string   `json:"position"`
	Nicknames []string `json:"nicknames"`
	Error     string   `json:"error"`
}

// BuildPrompt renders the identification prompt for query with the whole
// knowledge base as context
func BuildPrompt(query string, known []player.Player) string {
	kb := "Empty knowledge base"
	if len(known) > 0 {
		if data, err := json.MarshalIndent(known, "", "  "); err == nil {
			kb = string(data)
		}
	}

	quoted, _ := json.Marshal(query)
	return fmt.Sprintf(promptTemplate, query, kb, quoted)
}

// ParseResponse decodes a model reply into a player. Markdown code fences
// around the JSON are tolerated. The query is added to the nicknames when
// the model left it out.
func ParseResponse(text, query string) (player.Player, error) {
	body := stripCodeFence(strings.TrimSpace(text))

	var r reply
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		// Some models wrap the object in prose; fall back to the outermost braces
		start, end := strings.Index(body, "{"), strings.LastIndex(body, "}")
		if start < 0 || end <= start {
			return player.Player{}, fmt.Errorf("%w: %v", player.ErrMalformedOracleResponse, err)
		}
		if err := json.Unmarshal([]byte(body[start:end+1]), &r); err != nil {
			return player.Player{}, fmt.Errorf("%w: %v", player.ErrMalformedOracleResponse, err)
		}
	}

	if r.Error != "" {
		return player.Player{}, fmt.Errorf("%w: %s", player.ErrNotFound, r.Error)
	}

	p := player.Player{
		Name:     strings.TrimSpace(r.Name),
		Team:     strings.TrimSpace(r.Team),
		Position: strings.TrimSpace(r.Position),
	}
	if !p.Valid() {
		return player.Player{}, fmt.Errorf("%w: name, team and position are required", player.ErrMalformedOracleResponse)
	}

	seen := make(map[string]struct{})
	for _, n := range append(r.Nicknames, query) {
		n = strings.TrimSpace(n)
		key := player.Normalize(n)
		if key == "" || key == p.Key() {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		p.Nicknames = append(p.Nicknames, n)
	}
	if p.Nicknames == nil {
		p.Nicknames = []string{}
	}

	return p, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag line, e.g. ```json
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

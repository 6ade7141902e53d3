package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerpulse/internal/domain/player"
)

func TestBuildPrompt(t *testing.T) {
	t.Run("Empty knowledge base", func(t *testing.T) {
		prompt := BuildPrompt("Showtime", nil)
		assert.Contains(t, prompt, `"Showtime"`)
		assert.Contains(t, prompt, "Empty knowledge base")
		assert.Contains(t, prompt, `"nicknames": ["Showtime"]`, "Expected query to be pre-filled as a nickname")
		assert.Contains(t, prompt, `{"error": "Player not found"}`)
	})

	t.Run("Knowledge base included", func(t *testing.T) {
		prompt := BuildPrompt("CMC", []player.Player{{Name: "Christian McCaffrey", Team: "San Francisco 49ers", Position: "RB"}})
		assert.Contains(t, prompt, `"name": "Christian McCaffrey"`)
		assert.NotContains(t, prompt, "Empty knowledge base")
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("Bare JSON", func(t *testing.T) {
		p, err := ParseResponse(`{"name":"Patrick Mahomes","team":"Kansas City Chiefs","position":"QB","nicknames":["Showtime"]}`, "Showtime")
		require.NoError(t, err)
		assert.Equal(t, "Patrick Mahomes", p.Name)
		assert.Equal(t, "Kansas City Chiefs", p.Team)
		assert.Equal(t, "QB", p.Position)
		assert.Equal(t, []string{"Showtime"}, p.Nicknames)
	})

	t.Run("Code fence", func(t *testing.T) {
		text := "```json\n{\"name\":\"Travis Kelce\",\"team\":\"Kansas City Chiefs\",\"position\":\"TE\",\"nicknames\":[]}\n```"
		p, err := ParseResponse(text, "Big Yeti")
		require.NoError(t, err)
		assert.Equal(t, "Travis Kelce", p.Name)
		assert.Equal(t, []string{"Big Yeti"}, p.Nicknames, "Expected query to be added as a nickname")
	})

	t.Run("Surrounding prose", func(t *testing.T) {
		text := `Sure! {"name":"Josh Allen","team":"Buffalo Bills","position":"QB","nicknames":["josh"]} Hope that helps.`
		p, err := ParseResponse(text, "Josh")
		require.NoError(t, err)
		assert.Equal(t, "Josh Allen", p.Name)
		assert.Equal(t, []string{"josh"}, p.Nicknames, "Expected nicknames to be deduplicated")
	})

	t.Run("Not found", func(t *testing.T) {
		_, err := ParseResponse(`{"error": "Player not found"}`, "zzz")
		assert.ErrorIs(t, err, player.ErrNotFound)
		assert.NotErrorIs(t, err, player.ErrMalformedOracleResponse)
	})

	t.Run("Not JSON", func(t *testing.T) {
		_, err := ParseResponse("I am not sure who that is.", "zzz")
		assert.ErrorIs(t, err, player.ErrMalformedOracleResponse)
	})

	t.Run("Missing fields", func(t *testing.T) {
		_, err := ParseResponse(`{"name":"Someone"}`, "zzz")
		assert.ErrorIs(t, err, player.ErrMalformedOracleResponse)
	})

	t.Run("Wrong types", func(t *testing.T) {
		_, err := ParseResponse(`{"name":12,"team":"x","position":"y"}`, "zzz")
		assert.ErrorIs(t, err, player.ErrMalformedOracleResponse)
	})
}

func TestAnthropicOracle(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		if assert.NoError(t, json.Unmarshal(body, &req)) && len(req.Messages) > 0 && len(req.Messages[0].Content) > 0 {
			gotPrompt = req.Messages[0].Content[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "test-model",
			"content": [{"type": "text", "text": "{\"name\":\"Patrick Mahomes\",\"team\":\"Kansas City Chiefs\",\"position\":\"QB\",\"nicknames\":[\"Showtime\"]}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 20}
		}`))
	}))
	defer server.Close()

	o := NewAnthropicOracle("test-key", "test-model", 200, nil,
		anthropicoption.WithBaseURL(server.URL),
		anthropicoption.WithMaxRetries(0),
	)

	p, err := o.Identify(context.Background(), "Showtime", nil)
	require.NoError(t, err)
	assert.Equal(t, "Patrick Mahomes", p.Name)
	assert.Contains(t, gotPrompt, `"Showtime"`)
}

func TestOpenAIOracle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "deepseek-chat",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "{\"error\": \"Player not found\"}"},
				"finish_reason": "stop"
			}]
		}`))
	}))
	defer server.Close()

	o := NewOpenAIOracle("test-key", server.URL+"/v1/", "deepseek-chat", nil, openaioption.WithMaxRetries(0))

	_, err := o.Identify(context.Background(), "zzz", nil)
	assert.ErrorIs(t, err, player.ErrNotFound)
}

func TestOracleTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	o := NewOpenAIOracle("test-key", server.URL+"/v1/", "m", nil, openaioption.WithMaxRetries(0))

	_, err := o.Identify(context.Background(), "zzz", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, player.ErrNotFound)
}

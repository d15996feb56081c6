package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiChatCompletionBuildsInlineData(t *testing.T) {
	var captured map[string]any
	var gotKey, gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotPath = r.URL.Path
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"calm and green"}]}}]}`)
	}))
	defer ts.Close()

	client := NewGeminiClient("gm-key", "models/gemini-1.5-flash-001", time.Minute, nil)
	client.SetBaseURL(ts.URL)

	messages := []ChatMessage{
		{Role: "system", Content: "You are an interior designer."},
		{Role: "user", Content: "Analyze this room.", ImageURL: "data:image/png;base64,abcd"},
	}
	got, err := client.ChatCompletion(context.Background(), messages, 0.7, 2000)
	require.NoError(t, err)
	assert.Equal(t, "calm and green", got)

	assert.Equal(t, "gm-key", gotKey)
	assert.Equal(t, "/models/gemini-1.5-flash-001:generateContent", gotPath)

	system := captured["systemInstruction"].(map[string]any)
	parts := system["parts"].([]any)
	assert.Equal(t, "You are an interior designer.", parts[0].(map[string]any)["text"])

	contents := captured["contents"].([]any)
	require.Len(t, contents, 1)
	userParts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, userParts, 2)
	inline := userParts[1].(map[string]any)["inline_data"].(map[string]any)
	assert.Equal(t, "image/png", inline["mime_type"])
	assert.Equal(t, "abcd", inline["data"])

	gen := captured["generationConfig"].(map[string]any)
	assert.EqualValues(t, 2000, gen["maxOutputTokens"])
}

func TestGeminiRequiresCredentials(t *testing.T) {
	client := NewGeminiClient("", "gemini-1.5-flash-001", time.Minute, nil)
	_, err := client.ChatCompletion(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, 0.7, 100)
	assert.ErrorContains(t, err, "missing API key")
}

func TestSplitDataURI(t *testing.T) {
	mime, data, err := splitDataURI("data:image/webp;base64,Zm9v")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", mime)
	assert.Equal(t, "Zm9v", data)

	_, _, err = splitDataURI("https://example.com/room.jpg")
	assert.Error(t, err)

	_, _, err = splitDataURI("data:image/webp;base64")
	assert.Error(t, err)
}

func TestNormalizeModel(t *testing.T) {
	assert.Equal(t, "gemini-1.5-flash-001", normalizeModel("models/gemini-1.5-flash-001"))
	assert.Equal(t, "gemini-1.5-pro", normalizeModel(" gemini-1.5-pro "))
	assert.Equal(t, "gemini-1.5-flash-001", normalizeModel(""))
}

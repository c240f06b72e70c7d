package vertex

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestClient(baseURL string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newClient(baseURL, "gemini-2.5-pro", 8192, ts, logger)
}

func TestGenerateContentSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		payload, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(payload, &gotBody))
		io.WriteString(w, `{
			"candidates":[{"content":{"parts":[{"text":"{\"score\":"},{"text":" 80}"}]}}],
			"usageMetadata":{"promptTokenCount":120,"candidatesTokenCount":15,"totalTokenCount":135}
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	text, err := client.GenerateContent(context.Background(), "score this shop")
	require.NoError(t, err)

	// Part texts are concatenated across the first candidate.
	require.Equal(t, `{"score": 80}`, text)

	require.Equal(t, "/gemini-2.5-pro:generateContent", gotPath)
	require.Equal(t, "Bearer test-token", gotAuth)

	contents := gotBody["contents"].([]any)
	require.Len(t, contents, 1)
	first := contents[0].(map[string]any)
	require.Equal(t, "user", first["role"])
	require.Equal(t, "score this shop", first["parts"].([]any)[0].(map[string]any)["text"])

	genCfg := gotBody["generationConfig"].(map[string]any)
	require.Equal(t, float64(8192), genCfg["maxOutputTokens"])

	tools := gotBody["tools"].([]any)
	require.Len(t, tools, 1)
	_, hasSearch := tools[0].(map[string]any)["googleSearch"]
	require.True(t, hasSearch)
}

func TestGenerateContentNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[]}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateContent(context.Background(), "prompt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no candidates")
}

func TestGenerateContentEmptyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateContent(context.Background(), "prompt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no text")
}

func TestGenerateContentErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":429}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateContent(context.Background(), "prompt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=429")
}

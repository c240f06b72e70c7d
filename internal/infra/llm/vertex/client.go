package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sakaba-labs/shinise-navi/pkg/metrics"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Client calls the Vertex AI generateContent endpoint for a fixed model
// deployment, with web-search grounding enabled on every request.
type Client struct {
	model           string
	maxOutputTokens int
	baseURL         string
	tokenSource     oauth2.TokenSource
	httpClient      *http.Client
	logger          *slog.Logger
}

// NewClient builds a Vertex AI client authenticated through Application
// Default Credentials.
func NewClient(ctx context.Context, project, location, model string, maxOutputTokens int, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(project) == "" {
		return nil, errors.New("vertex project cannot be empty")
	}
	ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("vertex credentials: %w", err)
	}
	baseURL := fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models",
		location, project, location)
	return newClient(baseURL, model, maxOutputTokens, ts, logger), nil
}

func newClient(baseURL, model string, maxOutputTokens int, ts oauth2.TokenSource, logger *slog.Logger) *Client {
	return &Client{
		model:           model,
		maxOutputTokens: maxOutputTokens,
		baseURL:         strings.TrimRight(baseURL, "/"),
		tokenSource:     ts,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger.With("component", "vertex.client"),
	}
}

// GenerateContent sends one prompt and returns the concatenated text of the
// first candidate's parts.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{MaxOutputTokens: c.maxOutputTokens},
		Tools:            []tool{{GoogleSearch: map[string]any{}}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("vertex token: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("vertex request error: status=%d body=%s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}

	var raw generateResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}

	if usage := raw.UsageMetadata.toTokenUsage(); !usage.IsZero() {
		c.logger.Debug("vertex token usage", "prompt", usage.PromptTokens, "completion", usage.CompletionTokens, "total", usage.TotalTokens)
	}

	if len(raw.Candidates) == 0 {
		return "", errors.New("vertex returned no candidates")
	}

	var sb strings.Builder
	for _, p := range raw.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("no text in model response")
	}
	return text, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	Tools            []tool           `json:"tools,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

type tool struct {
	GoogleSearch map[string]any `json:"googleSearch"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata usageMetadata `json:"usageMetadata"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

func (u usageMetadata) toTokenUsage() metrics.TokenUsage {
	return metrics.TokenUsage{
		PromptTokens:     u.PromptTokenCount,
		CompletionTokens: u.CandidatesTokenCount,
		TotalTokens:      u.TotalTokenCount,
	}
}

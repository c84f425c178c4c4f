// Package ai wraps the two external Groq APIs this service depends on:
// speech-to-text (Whisper) and chat completion. Transcription failures are
// surfaced to callers through a small error taxonomy; enrichment failures
// degrade to fallback values and never block note creation.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"susurro/internal/prompt"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Transcription failure kinds. Handlers map these to distinct HTTP
// statuses, so they must stay distinguishable with errors.Is.
var (
	ErrUpstream        = errors.New("transcription service error")
	ErrRateLimited     = fmt.Errorf("%w: provider rate limit exceeded", ErrUpstream)
	ErrTimeout         = errors.New("transcription timed out")
	ErrUnavailable     = errors.New("transcription service unreachable")
	ErrEmptyTranscript = errors.New("no speech recognized in audio")
)

// Client calls the Groq speech-to-text and chat-completion endpoints.
// The embedded http.Client carries no global timeout: transcription
// enforces its own 30s deadline via context, generation calls rely on
// transport defaults.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	prompts    *prompt.Library
	logger     *slog.Logger
}

type Option func(*Client)

// WithBaseURL overrides the Groq API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(apiKey, language string, prompts *prompt.Library, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		language:   language,
		httpClient: &http.Client{},
		prompts:    prompts,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete issues one chat-completion call with the template's system
// prompt and parameters. The user content is truncated to the template's
// input limit before sending.
func (c *Client) complete(ctx context.Context, tmpl prompt.Template, userContent string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: tmpl.Model,
		Messages: []chatMessage{
			{Role: "system", Content: tmpl.System},
			{Role: "user", Content: tmpl.Truncate(userContent)},
		},
		MaxTokens:   tmpl.MaxTokens,
		Temperature: tmpl.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("chat completion: status %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return cr.Choices[0].Message.Content, nil
}

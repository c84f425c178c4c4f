package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	transcriptionModel   = "whisper-large-v3"
	transcriptionTimeout = 30 * time.Second
)

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads audio to the speech-to-text endpoint and returns the
// transcript text. Failure kinds stay distinguishable for the caller:
// ErrTimeout after the 30s deadline, ErrUnavailable on transport errors,
// ErrUpstream on non-2xx (ErrRateLimited for 429), ErrEmptyTranscript when
// the provider returns no text.
func (c *Client) Transcribe(ctx context.Context, filename, contentType string, audio io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, transcriptionTimeout)
	defer cancel()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	writer.WriteField("model", transcriptionModel)
	writer.WriteField("language", c.language)
	writer.WriteField("response_format", "json")
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		c.logger.Error("transcription request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("transcription upstream error", "status", resp.StatusCode, "body", string(detail))
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", ErrRateLimited
		}
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var tr transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: malformed response", ErrUpstream)
	}

	text := strings.TrimSpace(tr.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

// Package translate normalizes user queries to English while shielding
// configured place names from the translation step.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const translateEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleClient calls the public Google translate endpoint. Translation is
// best-effort; callers treat any error as a signal to keep the original text.
type GoogleClient struct {
	targetLang string
	httpClient *http.Client
}

func NewGoogleClient(targetLang string, timeout time.Duration) *GoogleClient {
	if targetLang == "" {
		targetLang = "en"
	}
	return &GoogleClient{
		targetLang: targetLang,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Translate converts text from auto-detected source language to the target
// language.
func (c *GoogleClient) Translate(ctx context.Context, text string) (string, error) {
	params := url.Values{}
	params.Add("client", "gtx")
	params.Add("sl", "auto")
	params.Add("tl", c.targetLang)
	params.Add("dt", "t")
	params.Add("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s?%s", translateEndpoint, params.Encode()), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call translate endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return parseTranslation(body)
}

// parseTranslation unpacks the endpoint's nested-array response: the first
// element holds segment pairs of [translated, original, ...].
func parseTranslation(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translate response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("failed to parse segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		b.WriteString(part)
	}

	result := b.String()
	if result == "" {
		return "", fmt.Errorf("translate response contained no text")
	}
	return result, nil
}

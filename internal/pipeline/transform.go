package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Transformer converts words to a phonetic-only form. Implementations
// must be best-effort: callers always have a fallback and no failure
// here may block a run.
type Transformer interface {
	ToPhonetic(ctx context.Context, words []string) ([]string, error)
}

// HTTPTransformer calls the phonetic conversion service with a JSON
// request/response contract. State lives per invocation; nothing is
// shared between concurrent calls.
type HTTPTransformer struct {
	baseURL string
	httpc   *http.Client
}

func NewHTTPTransformer(baseURL string) *HTTPTransformer {
	return &HTTPTransformer{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

type transformPayload struct {
	Words []string `json:"words"`
}

func (t *HTTPTransformer) ToPhonetic(ctx context.Context, words []string) ([]string, error) {
	body, err := json.Marshal(transformPayload{Words: words})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transform request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/convert", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create transform request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call transform service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("transform service returned %d: %s", resp.StatusCode, raw)
	}

	var out transformPayload
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode transform response: %w", err)
	}
	return out.Words, nil
}

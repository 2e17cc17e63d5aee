package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/supersokol/workua-resume-toolkit/internal/logger"
)

// ErrNoBaseURL is returned when an embedding matcher is constructed
// without an endpoint.
var ErrNoBaseURL = errors.New("semantic: embedding base URL is empty")

const defaultEmbeddingTimeout = 30 * time.Second

// EmbeddingConfig configures the OpenAI-compatible embeddings endpoint.
type EmbeddingConfig struct {
	BaseURL    string        `json:"base_url" yaml:"base_url"`
	APIKey     string        `json:"api_key" yaml:"api_key"`
	Model      string        `json:"model" yaml:"model"`
	Dimensions int           `json:"dimensions" yaml:"dimensions"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
}

// EmbeddingMatcher embeds both texts through a /embeddings endpoint and
// scores them by cosine similarity.
type EmbeddingMatcher struct {
	cfg        EmbeddingConfig
	httpClient *http.Client
}

// NewEmbeddingMatcher builds a matcher against cfg.BaseURL. The API key
// may be empty for local inference servers.
func NewEmbeddingMatcher(cfg EmbeddingConfig) (*EmbeddingMatcher, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultEmbeddingTimeout
	}
	return &EmbeddingMatcher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type embeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model,omitempty"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Model string          `json:"model"`
	Error *embeddingError `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

func (m *EmbeddingMatcher) embed(ctx context.Context, texts []string) ([][]float64, error) {
	reqBody := embeddingRequest{
		Input:      texts,
		Model:      m.cfg.Model,
		Dimensions: m.cfg.Dimensions,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call embedding endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr embeddingError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("embedding endpoint status %d: %s (%s)", resp.StatusCode, apiErr.Message, apiErr.Code)
		}
		return nil, fmt.Errorf("embedding endpoint status %d: %s", resp.StatusCode, string(body))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return nil, fmt.Errorf("embedding endpoint error: %s (%s)", parsed.Error.Message, parsed.Error.Code)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embedding endpoint returned %d vectors for %d texts", len(parsed.Data), len(texts))
	}

	// The endpoint may reorder entries; the index field is authoritative.
	out := make([][]float64, len(texts))
	for _, entry := range parsed.Data {
		if entry.Index < 0 || entry.Index >= len(texts) {
			return nil, fmt.Errorf("embedding endpoint returned index %d out of range", entry.Index)
		}
		out[entry.Index] = entry.Embedding
	}
	logger.Debug().
		Int("texts", len(texts)).
		Str("model", parsed.Model).
		Msg("embedded texts")
	return out, nil
}

// Similarity embeds both texts in one request and returns their cosine
// similarity clamped to [0, 1].
func (m *EmbeddingMatcher) Similarity(ctx context.Context, a, b string) (float64, error) {
	vecs, err := m.embed(ctx, []string{a, b})
	if err != nil {
		return 0, err
	}
	score := cosine(vecs[0], vecs[1])
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}
	return score, nil
}

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

package feature

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

// PolarityScorer scores text polarity in [-1, 1]. It is an optional
// capability: when the extractor has no scorer (or a call fails) it falls
// back to the lexicon heuristic.
type PolarityScorer interface {
	Score(ctx context.Context, texts []string) ([]float64, error)
	Name() string
}

// ScorerConfig configures the remote sentiment scorer.
type ScorerConfig struct {
	Endpoint    string // full API URL
	Model       string
	APIKey      string
	TimeoutSecs int // per-request timeout (default: 60)
}

// HTTPScorer implements PolarityScorer against a sentiment endpoint that
// accepts {"model": ..., "input": [...]} and returns per-input polarity
// scores, mirroring the OpenAI-compatible embeddings shape.
type HTTPScorer struct {
	config ScorerConfig
	http   *http.Client
}

type scoreRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type scoreResponse struct {
	Data []struct {
		Index    int     `json:"index"`
		Polarity float64 `json:"polarity"`
	} `json:"data"`
}

// NewHTTPScorer creates a scorer from config. Endpoint and model are required.
func NewHTTPScorer(cfg ScorerConfig) (*HTTPScorer, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = 60
	}
	return &HTTPScorer{
		config: cfg,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		},
	}, nil
}

// Name returns the configured model name.
func (s *HTTPScorer) Name() string { return s.config.Model }

// Score returns one polarity per input text, clamped to [-1, 1].
func (s *HTTPScorer) Score(ctx context.Context, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(scoreRequest{Model: s.config.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed scoreResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parsing response JSON: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d scores, got %d", len(texts), len(parsed.Data))
	}

	scores := make([]float64, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(scores) {
			return nil, fmt.Errorf("invalid score index: %d", d.Index)
		}
		scores[d.Index] = clamp(d.Polarity, -1, 1)
	}
	return scores, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

package scorer

import (
	"context"
	"fmt"
	"strings"

	"FinMerge/internal/domain/failure"
	xhttp "FinMerge/pkg/http"
)

// Client scores texts with a sentiment classification service.
//
// Request:  POST {baseURL}/classify {"texts": [...], "max_tokens": 512}
// Response: {"results": [{"label": "positive", "score": 0.97}, ...]} in request order.
type Client struct {
	baseURL   string
	client    *xhttp.Client
	batchSize int
	maxTokens int
}

func New(hc *xhttp.Client, baseURL string, batchSize, maxTokens int) *Client {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    hc,
		batchSize: batchSize,
		maxTokens: maxTokens,
	}
}

type classifyRequest struct {
	Texts     []string `json:"texts"`
	MaxTokens int      `json:"max_tokens"`
}

type classifyResponse struct {
	Results []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	} `json:"results"`
}

// LabelScore maps a classifier label to -1, 0 or 1.
func LabelScore(label string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "negative":
		return -1, true
	case "neutral":
		return 0, true
	case "positive":
		return 1, true
	}
	return 0, false
}

// Classify sends texts in batches of batchSize and returns one score per text in order.
func (c *Client) Classify(ctx context.Context, texts []string) ([]float64, error) {
	scores := make([]float64, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := c.classifyBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		scores = append(scores, batch...)
	}
	return scores, nil
}

func (c *Client) classifyBatch(ctx context.Context, texts []string) ([]float64, error) {
	const op = "classify"

	var resp classifyResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/classify",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: classifyRequest{Texts: texts, MaxTokens: c.maxTokens},
	}, &resp)
	if err != nil {
		return nil, failure.Wrap(op, err)
	}
	if len(resp.Results) != len(texts) {
		return nil, failure.Parsef(op, "got %d results for %d texts", len(resp.Results), len(texts))
	}

	out := make([]float64, len(texts))
	for i, r := range resp.Results {
		s, ok := LabelScore(r.Label)
		if !ok {
			return nil, failure.Parsef(op, "unknown label %q", r.Label)
		}
		out[i] = s
	}
	return out, nil
}

// Package httprerank implements rerank.Reranker against an
// OpenAI-compatible `/rerank` HTTP endpoint (§6): bearer auth, a
// top_n parameter, and return_documents always false since the caller
// already holds the document bodies.
package httprerank

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/darkhanakh/claude-context/internal/xerrors"
	"github.com/darkhanakh/claude-context/rerank"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the provider's base URL; the client posts to
	// {BaseURL}/rerank.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is sent as a bearer token.
	APIKey string `json:"api_key" yaml:"api_key"`

	// Model is the rerank model name.
	Model string `json:"model" yaml:"model"`

	// HTTPClient overrides the default http.Client; nil uses a client
	// with a sane default timeout.
	HTTPClient *http.Client

	// Timeout bounds a single request when HTTPClient is nil. Zero
	// means the package default of 30s.
	Timeout time.Duration
}

func (c Config) validate() error {
	if c.BaseURL == "" {
		return xerrors.InvalidArgument("httprerank: base_url is required")
	}
	if c.Model == "" {
		return xerrors.InvalidArgument("httprerank: model is required")
	}
	return nil
}

func withDefaults(c Config) Config {
	if c.HTTPClient == nil {
		timeout := c.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		c.HTTPClient = &http.Client{Timeout: timeout}
	}
	return c
}

// Client is the concrete OpenAI-compatible Reranker provider.
type Client struct {
	conf Config
}

var _ rerank.Reranker = (*Client)(nil)

// NewClient validates conf and returns a ready-to-use Client.
func NewClient(conf Config) (*Client, error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return &Client{conf: withDefaults(conf)}, nil
}

type rerankRequest struct {
	Model           string   `json:"model"`
	Query           string   `json:"query"`
	Documents       []string `json:"documents"`
	TopN            int      `json:"top_n,omitempty"`
	ReturnDocuments bool     `json:"return_documents"`
}

type rerankResponseEntry struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

type rerankResponse struct {
	Data []rerankResponseEntry `json:"data"`
}

// Rerank posts query/documents to {base_url}/rerank and maps the
// response back onto the caller's document slice by index. A non-2xx
// response or any transport failure is returned as a single error
// (RerankFailure/BackendUnavailable); the caller must not fall back to
// the original ordering.
func (c *Client) Rerank(ctx context.Context, query string, documents []rerank.Document, opts rerank.Options) ([]rerank.Result, error) {
	if query == "" {
		return nil, xerrors.InvalidArgument("httprerank: query must not be empty")
	}
	if len(documents) == 0 {
		return nil, nil
	}

	texts := make([]string, len(documents))
	for i, d := range documents {
		texts[i] = d.Content
	}

	reqBody := rerankRequest{
		Model:           c.conf.Model,
		Query:           query,
		Documents:       texts,
		TopN:            opts.TopN,
		ReturnDocuments: false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, xerrors.InvalidArgument("httprerank: encoding request: %v", err)
	}

	url := c.conf.BaseURL + "/rerank"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, xerrors.BackendUnavailable("httprerank.Rerank", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.conf.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.conf.APIKey)
	}

	httpResp, err := c.conf.HTTPClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, xerrors.Canceled(ctx.Err())
		}
		return nil, xerrors.BackendUnavailable("httprerank.Rerank", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, xerrors.BackendUnavailable("httprerank.Rerank", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &xerrors.RerankFailure{Status: httpResp.StatusCode, Body: string(body)}
	}

	var parsed rerankResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &xerrors.RerankFailure{Status: httpResp.StatusCode, Body: string(body), Err: err}
	}

	results := make([]rerank.Result, 0, len(parsed.Data))
	for _, entry := range parsed.Data {
		if entry.Index < 0 || entry.Index >= len(documents) {
			continue
		}
		if opts.Threshold != 0 && entry.RelevanceScore < opts.Threshold {
			continue
		}
		results = append(results, rerank.Result{
			Document:       documents[entry.Index],
			RelevanceScore: entry.RelevanceScore,
			OriginalIndex:  entry.Index,
		})
	}

	return results, nil
}

// ProviderName identifies this provider for logging/diagnostics.
func (c *Client) ProviderName() string {
	return "openai-compatible"
}

// ModelName returns the configured rerank model.
func (c *Client) ModelName() string {
	return c.conf.Model
}

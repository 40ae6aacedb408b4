package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mwestergaard/slrpipe/internal/document"
)

// Client communicates with the similarity/embedding store HTTP API. The
// store embeds fragments on write; reads return fragments with a distance
// to the query (lower distance = more relevant).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type addRequest struct {
	Fragments []document.Fragment `json:"fragments"`
}

type searchRequest struct {
	Query  string            `json:"query"`
	K      int               `json:"k"`
	Filter map[string]string `json:"filter,omitempty"`
}

type searchResponse struct {
	Results []document.ScoredFragment `json:"results"`
}

// AddFragments submits fragments for embedding and storage. The write is
// asynchronous on the store side; use the rank package's convergence wait
// before trusting similarity queries against fresh writes.
func (c *Client) AddFragments(ctx context.Context, fragments []document.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}
	body, err := json.Marshal(addRequest{Fragments: fragments})
	if err != nil {
		return fmt.Errorf("marshal fragments: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/fragments", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("add fragments: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("add fragments: status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SimilaritySearch returns up to k fragments ordered by ascending distance
// to the query. The filter supports equality on fragment metadata fields,
// e.g. {"source_id": id}.
func (c *Client) SimilaritySearch(ctx context.Context, query string, k int, filter map[string]string) ([]document.ScoredFragment, error) {
	body, err := json.Marshal(searchRequest{Query: query, K: k, Filter: filter})
	if err != nil {
		return nil, fmt.Errorf("marshal search: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("similarity search: status %d: %s", resp.StatusCode, string(respBody))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return result.Results, nil
}

// DeleteSource removes all fragments of one source document.
func (c *Client) DeleteSource(ctx context.Context, sourceID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/fragments/"+sourceID, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("delete source %s: status %d: %s", sourceID, resp.StatusCode, string(respBody))
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

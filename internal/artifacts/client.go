package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mwestergaard/slrpipe/internal/screening"
)

// Client talks to the durable artifact store: one summary artifact and one
// screening result per document identifier.
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

type summaryPayload struct {
	DocID   string `json:"doc_id"`
	Summary string `json:"summary"`
}

// PutSummary stores the narrative summary artifact for a document.
func (c *Client) PutSummary(ctx context.Context, docID, summaryHTML string) error {
	return c.put(ctx, "/summaries/"+docID, summaryPayload{DocID: docID, Summary: summaryHTML})
}

// GetSummary fetches a stored summary; empty string when absent.
func (c *Client) GetSummary(ctx context.Context, docID string) (string, error) {
	var payload summaryPayload
	found, err := c.get(ctx, "/summaries/"+docID, &payload)
	if err != nil || !found {
		return "", err
	}
	return payload.Summary, nil
}

type screeningPayload struct {
	DocID  string           `json:"doc_id"`
	Result screening.Result `json:"result"`
}

// PutScreening stores the structured screening result for a document.
func (c *Client) PutScreening(ctx context.Context, docID string, result screening.Result) error {
	return c.put(ctx, "/screenings/"+docID, screeningPayload{DocID: docID, Result: result})
}

// GetScreening fetches a stored screening result; nil when absent.
func (c *Client) GetScreening(ctx context.Context, docID string) (*screening.Result, error) {
	var payload screeningPayload
	found, err := c.get(ctx, "/screenings/"+docID, &payload)
	if err != nil || !found {
		return nil, err
	}
	return &payload.Result, nil
}

func (c *Client) put(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("put artifact: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("put artifact %s: status %d: %s", path, resp.StatusCode, string(respBody))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) (bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("get artifact: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("get artifact %s: status %d: %s", path, resp.StatusCode, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode artifact: %w", err)
	}
	return true, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

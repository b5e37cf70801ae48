// Package exchange is the HTTP client for the betting exchange's wager API.
package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client places wagers against the exchange's market-maker endpoint.
type Client struct {
	baseURL    string
	accessKey  string
	secretKey  string
	httpClient *http.Client
}

// PlaceWagerRequest is the exchange's wire format for a new wager.
type PlaceWagerRequest struct {
	ExternalID string  `json:"external_id"`
	LineID     string  `json:"line_id"`
	Odds       int     `json:"odds"`
	Stake      float64 `json:"stake"`
}

// PlaceWagerResponse is the exchange's reply to a placed wager.
type PlaceWagerResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewClient creates a new exchange client.
func NewClient(baseURL, accessKey, secretKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	return &Client{
		baseURL:    baseURL,
		accessKey:  accessKey,
		secretKey:  secretKey,
		httpClient: httpClient,
	}
}

// SubmitOrder places a wager and returns the exchange's order id. Any
// transport or non-2xx failure is returned as an error; callers only need the
// message, not the subtype.
func (c *Client) SubmitOrder(ctx context.Context, externalID, lineID string, odds int, stake float64) (string, error) {
	req := PlaceWagerRequest{
		ExternalID: externalID,
		LineID:     lineID,
		Odds:       odds,
		Stake:      stake,
	}
	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal wager: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/partner/mm/place_wager", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Access-Key", c.accessKey)
	httpReq.Header.Set("X-Secret-Key", c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("exchange returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var wagerResp PlaceWagerResponse
	if err := json.Unmarshal(body, &wagerResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if wagerResp.ID == "" {
		// Some sandbox deployments omit the id on success; fall back to the
		// external id so the ledger still has a handle.
		return req.ExternalID, nil
	}
	return wagerResp.ID, nil
}

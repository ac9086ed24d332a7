package orgclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	models "agentdeck/internal/domain/models/organization"
)

// BatchError is a failed batch response. Status is the HTTP status code.
type BatchError struct {
	Status  int
	Message string
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch update failed with status %d: %s", e.Status, e.Message)
}

// Client talks to the organization API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an API client. token is sent as a bearer token when set.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

type batchResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ApplyBatch sends one batch request. It never retries.
func (c *Client) ApplyBatch(ctx context.Context, set *models.UpdateSet) error {
	if set == nil {
		set = &models.UpdateSet{}
	}
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/organization/batch", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read batch response: %w", err)
	}

	var decoded batchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return &BatchError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if resp.StatusCode != http.StatusOK || !decoded.Success {
		return &BatchError{Status: resp.StatusCode, Message: decoded.Error}
	}

	return nil
}

// FetchItems reads the flat rows of one lifecycle
func (c *Client) FetchItems(ctx context.Context, lifecycle models.Lifecycle) (*models.Items, error) {
	query := url.Values{"view": {strings.ToLower(string(lifecycle))}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/organization/items?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create items request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch items failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var items models.Items
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}

	return &items, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

package etl

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

// listKeys are the request body keys of each entity's bulk endpoint.
var listKeys = map[string]string{
	"department": "departments",
	"job":        "jobs",
	"user":       "users",
}

// ListKey returns "" for an unknown entity.
func ListKey(entity string) string {
	return listKeys[entity]
}

// APIClient posts chunks to the bulk endpoints of the HR data API.
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BulkURL is the bulk endpoint of entity.
func (c *APIClient) BulkURL(entity string) string {
	return fmt.Sprintf("%s/v1/%s/bulk", c.baseURL, entity)
}

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bulk endpoint answered %d: %s", e.Status, e.Body)
}

// PostBulk sends records wrapped in the entity's list key and returns the
// number of rows the API reports as inserted.
func (c *APIClient) PostBulk(ctx context.Context, entity, idempotencyKey string, records []map[string]any) (int, error) {
	key := ListKey(entity)
	if key == "" {
		return 0, fmt.Errorf("unknown entity %q", entity)
	}
	body, err := json.Marshal(map[string]any{key: records})
	if err != nil {
		return 0, fmt.Errorf("encode chunk: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BulkURL(entity), bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post %s: %w", c.BulkURL(entity), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	var env struct {
		Data struct {
			Inserted int `json:"inserted"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, fmt.Errorf("decode %d response from %s: %w", resp.StatusCode, c.BulkURL(entity), err)
	}
	return env.Data.Inserted, nil
}

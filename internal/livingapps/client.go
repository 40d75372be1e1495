package livingapps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// Record is the common envelope shared by every collection in the store.
// Field values are plain strings; a JSON null or missing attribute decodes
// to the empty string.
type Record struct {
	RecordID  string            `json:"record_id"`
	CreatedAt string            `json:"createdat"`
	UpdatedAt *string           `json:"updatedat"`
	Fields    map[string]string `json:"fields"`
}

// Client talks to a LivingApps-style record store. It holds no package-level
// state; construct one per process and pass it to whatever needs it.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// recordBody is the wire shape of a single record, without its identifier.
type recordBody struct {
	ID        string         `json:"id"`
	CreatedAt string         `json:"createdat"`
	UpdatedAt *string        `json:"updatedat"`
	Fields    map[string]any `json:"fields"`
}

func (b recordBody) toRecord(recordID string) Record {
	fields := make(map[string]string, len(b.Fields))
	for name, value := range b.Fields {
		fields[name] = coerceString(value)
	}
	return Record{
		RecordID:  recordID,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		Fields:    fields,
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// List fetches all records of a collection. The store responds with a JSON
// object keyed by record id; each key is injected as the record_id of its
// entry. The result is sorted by createdat, then record_id, so iteration
// order is deterministic.
func (c *Client) List(ctx context.Context, appID string) ([]Record, error) {
	raw, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/apps/%s/records", appID), nil)
	if err != nil {
		return nil, err
	}

	var byID map[string]recordBody
	if err := json.Unmarshal(raw, &byID); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	records := make([]Record, 0, len(byID))
	for id, body := range byID {
		records = append(records, body.toRecord(id))
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt != records[j].CreatedAt {
			return records[i].CreatedAt < records[j].CreatedAt
		}
		return records[i].RecordID < records[j].RecordID
	})
	return records, nil
}

// Get fetches a single record; its record_id is taken from the body's own
// id field.
func (c *Client) Get(ctx context.Context, appID, recordID string) (*Record, error) {
	raw, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/apps/%s/records/%s", appID, recordID), nil)
	if err != nil {
		return nil, err
	}

	var body recordBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	record := body.toRecord(body.ID)
	return &record, nil
}

// Create posts a new record and returns the identifier of the created
// record when the store includes one in its response.
func (c *Client) Create(ctx context.Context, appID string, fields map[string]string) (string, error) {
	raw, err := c.call(ctx, http.MethodPost, fmt.Sprintf("/apps/%s/records", appID), map[string]any{"fields": fields})
	if err != nil {
		return "", err
	}

	var body struct {
		ID string `json:"id"`
	}
	// Response shape beyond the id is not consumed.
	_ = json.Unmarshal(raw, &body)
	return body.ID, nil
}

// Update patches a record with a partial field set; only the provided keys
// are sent.
func (c *Client) Update(ctx context.Context, appID, recordID string, fields map[string]string) error {
	_, err := c.call(ctx, http.MethodPatch, fmt.Sprintf("/apps/%s/records/%s", appID, recordID), map[string]any{"fields": fields})
	return err
}

// Delete removes a record; the response body is ignored.
func (c *Client) Delete(ctx context.Context, appID, recordID string) error {
	_, err := c.call(ctx, http.MethodDelete, fmt.Sprintf("/apps/%s/records/%s", appID, recordID), nil)
	return err
}

// Ping issues a cheap request against the store to verify reachability.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("record store unavailable: %s", resp.Status)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, endpoint, err)
	}

	// The store has no structured error taxonomy; surface the body text.
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s %s: %s: %s", method, endpoint, resp.Status, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

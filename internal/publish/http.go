package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"covrun/internal/domain"
)

const runsPath = "/api/runs"

// HTTPClient talks to a report server over JSON.
type HTTPClient struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a client for base with a bounded default timeout.
func NewHTTP(base string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{Base: strings.TrimRight(base, "/"), HTTP: hc}
}

// Publish stores m on the server.
func (c *HTTPClient) Publish(ctx context.Context, m domain.Manifest) error {
	return c.post(ctx, runsPath, m, nil)
}

// List returns the server's manifests.
func (c *HTTPClient) List(ctx context.Context) ([]domain.Manifest, error) {
	var out []domain.Manifest
	if err := c.getJSON(ctx, runsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, in any, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return statusError(http.MethodPost, path, resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return statusError(http.MethodGet, path, resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(method, path string, resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if s := strings.TrimSpace(string(msg)); s != "" {
		return fmt.Errorf("publish %s %s: %s: %s", strings.ToLower(method), path, resp.Status, s)
	}
	return fmt.Errorf("publish %s %s: %s", strings.ToLower(method), path, resp.Status)
}

var (
	_ domain.Publisher = (*HTTPClient)(nil)
	_ domain.RunLister = (*HTTPClient)(nil)
)

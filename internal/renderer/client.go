package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient implements Engine against the renderer sidecar.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		// Renders are slow; the render call owns the budget.
		client: &http.Client{Timeout: 10 * time.Minute},
	}
}

type bundleResponse struct {
	ServeURL string `json:"serveUrl"`
}

func (c *HTTPClient) Bundle(ctx context.Context) (string, error) {
	var resp bundleResponse
	if err := c.post(ctx, "/bundle", struct{}{}, &resp); err != nil {
		return "", err
	}
	if resp.ServeURL == "" {
		return "", fmt.Errorf("renderer returned empty serve url")
	}
	return resp.ServeURL, nil
}

type selectRequest struct {
	ServeURL      string `json:"serveUrl"`
	CompositionID string `json:"compositionId"`
	InputProps    any    `json:"inputProps"`
}

func (c *HTTPClient) SelectComposition(ctx context.Context, serveURL, compositionID string, inputProps any) (Composition, error) {
	var comp Composition
	err := c.post(ctx, "/compositions", selectRequest{
		ServeURL:      serveURL,
		CompositionID: compositionID,
		InputProps:    inputProps,
	}, &comp)
	return comp, err
}

func (c *HTTPClient) Render(ctx context.Context, req RenderRequest) error {
	return c.post(ctx, "/render", req, nil)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return fmt.Errorf("renderer %s http %d: %s", path, res.StatusCode, bytes.TrimSpace(msg))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

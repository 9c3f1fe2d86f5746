package livepeer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultAPIURL = "https://livepeer.studio"

// Logger interface for logging operations
type Logger interface {
	LogInfo(msg string, fields map[string]interface{})
	LogDebug(message string, fields map[string]interface{})
	LogError(err error, msg string) error
}

// Client talks to the Livepeer Studio asset API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	// uploads are unbounded in time; only the API calls use the timeout
	uploadClient *http.Client
	logger       Logger
}

// NewClient creates a new pipeline client
func NewClient(cfg *Config, logger Logger) *Client {
	baseURL := strings.TrimRight(cfg.APIURL, "/")
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      baseURL,
		apiKey:       cfg.APIKey,
		httpClient:   &http.Client{Timeout: timeout},
		uploadClient: &http.Client{},
		logger:       logger,
	}
}

// CreateAsset requests an upload slot for name and sends the file body to it.
// onProgress receives the uploaded fraction in [0, 1].
func (c *Client) CreateAsset(ctx context.Context, name string, body io.Reader, size int64, onProgress func(float64)) (*Asset, error) {
	var ticket requestUploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/asset/request-upload", requestUploadRequest{Name: name}, &ticket); err != nil {
		return nil, fmt.Errorf("failed to request upload: %w", err)
	}
	if ticket.URL == "" || ticket.Asset.ID == "" {
		return nil, fmt.Errorf("failed to request upload: incomplete response")
	}

	c.logger.LogInfo("Upload slot issued", map[string]interface{}{
		"asset_id": ticket.Asset.ID,
		"task_id":  ticket.Task.ID,
	})

	if err := c.upload(ctx, ticket.URL, NewProgressReader(body, size, onProgress), size); err != nil {
		return nil, err
	}

	asset := ticket.Asset
	if asset.Name == "" {
		asset.Name = name
	}
	return &asset, nil
}

// GetAsset fetches the current state of an asset
func (c *Client) GetAsset(ctx context.Context, id string) (*Asset, error) {
	var asset Asset
	if err := c.do(ctx, http.MethodGet, "/api/asset/"+url.PathEscape(id), nil, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// UpdateAsset patches an asset, typically to request the IPFS export
func (c *Client) UpdateAsset(ctx context.Context, id string, req UpdateAssetRequest) (*Asset, error) {
	var asset Asset
	if err := c.do(ctx, http.MethodPatch, "/api/asset/"+url.PathEscape(id), req, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (c *Client) upload(ctx context.Context, uploadURL string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.LogDebug("Livepeer request", map[string]interface{}{
		"method": method,
		"path":   path,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if len(data) > 0 {
		if err := json.Unmarshal(data, apiErr); err != nil || len(apiErr.Errors) == 0 {
			apiErr.Errors = []string{strings.TrimSpace(string(data))}
		}
	}
	return apiErr
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return strconv.Itoa(code) + " " + text
	}
	return strconv.Itoa(code)
}

package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNoID is returned when the media service accepts an upload but its
// response carries no usable id.
var ErrNoID = errors.New("media service returned no id")

// Client talks to the external media service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the media service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the normalized service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type uploadResponse struct {
	ID json.RawMessage `json:"id"`
}

type resolveResponse struct {
	URL string `json:"url"`
}

// Upload sends the file as multipart form field "file" and returns the id the
// service assigned to it.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (int64, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return 0, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return 0, fmt.Errorf("copy upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/media/upload", &body)
	if err != nil {
		return 0, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var res uploadResponse
	if err := c.do(req, &res); err != nil {
		return 0, err
	}
	return parseID(res.ID)
}

// Resolve returns the public URL of a media item. Root-relative paths are
// prefixed with the service address; any other value is returned as is.
func (c *Client) Resolve(ctx context.Context, id int64) (string, error) {
	endpoint := fmt.Sprintf("%s/api/media/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build resolve request: %w", err)
	}

	var res resolveResponse
	if err := c.do(req, &res); err != nil {
		return "", err
	}
	if res.URL == "" {
		return "", fmt.Errorf("media %d has no url", id)
	}
	if strings.HasPrefix(res.URL, "/") && !strings.HasPrefix(res.URL, "//") {
		return c.baseURL + res.URL, nil
	}
	return res.URL, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// parseID accepts the id as a JSON number or a numeric string.
func parseID(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, ErrNoID
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("media id %s: %w", raw, ErrNoID)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("media id %q: %w", s, ErrNoID)
	}
	return n, nil
}

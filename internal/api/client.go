// Package api is the HTTP client for the image processing service. The
// service accepts base64 data-URL images and polygon or region masks and
// returns the inpainted result.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/example/eraserpad/internal/canvas"
)

const (
	defaultTimeout       = 5 * time.Minute
	maxResponseBytes     = 64 << 20
	DefaultInferenceStep = 50
	DefaultGuidance      = 7.5
)

// Client talks to one processing service.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the service at baseURL, e.g.
// "http://localhost:8000". Processing runs take minutes, so the underlying
// client carries a generous timeout; per-call deadlines come from the
// context.
func New(baseURL string) (*Client, error) {
	return NewWithTimeout(baseURL, 0)
}

// NewWithTimeout is New with a configured request timeout. A zero or
// negative timeout keeps the default.
func NewWithTimeout(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: invalid base URL %q", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base: u.Scheme + "://" + u.Host,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// StatusError is a non-2xx reply. Message carries the service's "error"
// field when one was present.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: HTTP %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api: HTTP %d", e.Code)
}

// Coordinate is one polygon vertex in image space.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HealthInfo is the service's health report.
type HealthInfo struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// UploadResult acknowledges a validated upload.
type UploadResult struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	ImageID  string         `json:"image_id"`
	Metadata map[string]any `json:"metadata"`
}

// ProcessRequest asks the service to erase the masked area. Coordinates
// carries the polygon outline; Regions, when present, takes precedence on
// the service side. Image is a base64 data URL.
type ProcessRequest struct {
	Image             string          `json:"image"`
	Coordinates       []Coordinate    `json:"coordinates"`
	Regions           []canvas.Region `json:"regions,omitempty"`
	Prompt            string          `json:"prompt,omitempty"`
	NumInferenceSteps int             `json:"num_inference_steps,omitempty"`
	GuidanceScale     float64         `json:"guidance_scale,omitempty"`
	Seed              *int            `json:"seed,omitempty"`
}

// ProcessResult is a successful processing reply. ProcessedImage is a base64
// data URL.
type ProcessResult struct {
	Success        bool    `json:"success"`
	ProcessedImage string  `json:"processed_image"`
	Message        string  `json:"message"`
	ProcessingTime float64 `json:"processing_time"`
	RequestID      string  `json:"request_id"`
	AIAnalysis     string  `json:"ai_analysis"`
}

// Health checks that the service is up.
func (c *Client) Health(ctx context.Context) (HealthInfo, error) {
	var out HealthInfo
	err := c.get(ctx, "/api/health", &out)
	return out, err
}

// Upload validates an image with the service and returns its assigned ID.
func (c *Client) Upload(ctx context.Context, imageDataURL string) (UploadResult, error) {
	var out UploadResult
	err := c.post(ctx, "/api/upload", map[string]string{"image": imageDataURL}, &out)
	return out, err
}

// Process submits an erase job and blocks until the service replies.
func (c *Client) Process(ctx context.Context, req ProcessRequest) (ProcessResult, error) {
	if req.NumInferenceSteps == 0 {
		req.NumInferenceSteps = DefaultInferenceStep
	}
	if req.GuidanceScale == 0 {
		req.GuidanceScale = DefaultGuidance
	}
	var out ProcessResult
	err := c.post(ctx, "/api/process", req, &out)
	return out, err
}

// Download asks the service to render an image as a PNG attachment and
// returns the raw bytes.
func (c *Client) Download(ctx context.Context, imageDataURL string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"image": imageDataURL})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/download", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}

// PolygonCoordinates flattens a shape's outline into the wire format.
func PolygonCoordinates(s canvas.Shape) []Coordinate {
	out := make([]Coordinate, len(s.Points))
	for i, p := range s.Points {
		out[i] = Coordinate{X: p.X, Y: p.Y}
	}
	return out
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	return resp, nil
}

func decodeJSON(resp *http.Response, out any) error {
	if err := checkStatus(resp); err != nil {
		return err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	serr := &StatusError{Code: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &body) == nil {
			serr.Message = body.Error
		}
	}
	return serr
}

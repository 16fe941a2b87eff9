package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"scrollreel/internal/config"
	"scrollreel/internal/services"
)

const defaultClientTimeout = 30 * time.Second

// Error is a failed API response.
type Error struct {
	Status  int
	Message string
	Kind    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.Status)
	}
	return e.Message
}

// Unwrap maps the HTTP status back to a services marker.
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return services.ErrNotFound
	case e.Status == http.StatusForbidden, e.Status == http.StatusUnauthorized:
		return services.ErrForbidden
	case e.Status >= 400 && e.Status < 500:
		return services.ErrInput
	default:
		return services.ErrPersistence
	}
}

// MessageOf returns the server's message for API errors and err.Error()
// otherwise.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

// Client calls the daemon's HTTP API.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client

	mu     sync.Mutex
	nonces map[string]string
}

// NewClient builds a client for the daemon described by cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	timeout := time.Duration(cfg.API.RequestTimeoutSeconds) * time.Second
	return NewClientForURL(cfg.APIBaseURL(), cfg.Paths.APIToken, timeout)
}

// NewClientForURL builds a client for an explicit base URL.
func NewClientForURL(baseURL, token string, timeout time.Duration) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return nil, errors.New("api base url is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	return &Client{
		base:   base,
		token:  strings.TrimSpace(token),
		http:   &http.Client{Timeout: timeout},
		nonces: make(map[string]string),
	}, nil
}

// BaseURL returns the daemon address.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	ref := &url.URL{Path: path}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return c.base.ResolveReference(ref).String()
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon at %s: %w", c.base.Host, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		*raw = data
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	var payload ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err == nil {
		apiErr.Message = payload.Message
		apiErr.Kind = payload.Kind
	}
	return apiErr
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := c.newRequest(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func animationPath(id int64, suffix string) string {
	return "/api/animations/" + strconv.FormatInt(id, 10) + suffix
}

// Status returns daemon runtime information.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var resp StatusResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/status", nil, nil, &resp)
	return resp, err
}

// Health returns database diagnostics.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, nil, &resp)
	return resp, err
}

// ListAnimations returns every animation.
func (c *Client) ListAnimations(ctx context.Context) ([]Animation, error) {
	var resp AnimationListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/animations", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Animations, nil
}

// CreateAnimation creates an empty animation.
func (c *Client) CreateAnimation(ctx context.Context, title string) (Animation, error) {
	var resp AnimationResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/animations", nil, CreateAnimationRequest{Title: title}, &resp)
	return resp.Animation, err
}

// GetAnimation returns an animation and its frames.
func (c *Client) GetAnimation(ctx context.Context, id int64) (AnimationDetail, error) {
	var resp AnimationDetail
	err := c.doJSON(ctx, http.MethodGet, animationPath(id, ""), nil, nil, &resp)
	return resp, err
}

// DeleteAnimation removes an animation and its frames.
func (c *Client) DeleteAnimation(ctx context.Context, id int64) (DeleteAnimationResponse, error) {
	var resp DeleteAnimationResponse
	err := c.doJSON(ctx, http.MethodDelete, animationPath(id, ""), nil, nil, &resp)
	return resp, err
}

// Nonce returns the anti-forgery token for action on animation id. Tokens
// are cached per client.
func (c *Client) Nonce(ctx context.Context, id int64, action string) (string, error) {
	key := action + "|" + strconv.FormatInt(id, 10)
	c.mu.Lock()
	cached, ok := c.nonces[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	var resp NonceResponse
	if err := c.doJSON(ctx, http.MethodGet, animationPath(id, "/nonce"), url.Values{"action": {action}}, nil, &resp); err != nil {
		return "", err
	}
	c.mu.Lock()
	c.nonces[key] = resp.Nonce
	c.mu.Unlock()
	return resp.Nonce, nil
}

// UpdateSettings changes easing and/or loop count. Nil values are left alone.
func (c *Client) UpdateSettings(ctx context.Context, id int64, easing *string, loopCount *int) (SettingsResponse, error) {
	nonce, err := c.Nonce(ctx, id, ActionSettings)
	if err != nil {
		return SettingsResponse{}, err
	}
	var resp SettingsResponse
	req := SettingsRequest{Easing: easing, LoopCount: loopCount, Nonce: nonce}
	err = c.doJSON(ctx, http.MethodPut, animationPath(id, "/settings"), nil, req, &resp)
	return resp, err
}

// UpdateTitle renames an animation.
func (c *Client) UpdateTitle(ctx context.Context, id int64, title string) (Animation, error) {
	nonce, err := c.Nonce(ctx, id, ActionSettings)
	if err != nil {
		return Animation{}, err
	}
	var resp AnimationResponse
	err = c.doJSON(ctx, http.MethodPut, animationPath(id, "/title"), nil, TitleRequest{Title: title, Nonce: nonce}, &resp)
	return resp.Animation, err
}

// UploadFrame sends the file at path as one frame. The server derives the
// ordinal from the file name.
func (c *Client) UploadFrame(ctx context.Context, id int64, path string) (FrameUploadResponse, error) {
	nonce, err := c.Nonce(ctx, id, ActionUpload)
	if err != nil {
		return FrameUploadResponse{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return FrameUploadResponse{}, fmt.Errorf("open frame: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("nonce", nonce); err != nil {
		return FrameUploadResponse{}, err
	}
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return FrameUploadResponse{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return FrameUploadResponse{}, fmt.Errorf("read frame: %w", err)
	}
	if err := writer.Close(); err != nil {
		return FrameUploadResponse{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint(animationPath(id, "/frames"), nil), &body)
	if err != nil {
		return FrameUploadResponse{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp FrameUploadResponse
	err = c.send(req, &resp)
	return resp, err
}

// DeleteFrame removes the frame at ordinal.
func (c *Client) DeleteFrame(ctx context.Context, id int64, ordinal int) (FrameDeleteResponse, error) {
	nonce, err := c.Nonce(ctx, id, ActionDeleteFrame)
	if err != nil {
		return FrameDeleteResponse{}, err
	}
	var resp FrameDeleteResponse
	path := animationPath(id, "/frames/"+strconv.Itoa(ordinal))
	err = c.doJSON(ctx, http.MethodDelete, path, url.Values{"nonce": {nonce}}, nil, &resp)
	return resp, err
}

// Embed returns the embed markup for an animation.
func (c *Client) Embed(ctx context.Context, id int64) (string, error) {
	var resp EmbedResponse
	err := c.doJSON(ctx, http.MethodGet, animationPath(id, "/embed"), nil, nil, &resp)
	return resp.HTML, err
}

// Manifest returns the YAML manifest for an animation.
func (c *Client) Manifest(ctx context.Context, id int64) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint(animationPath(id, "/manifest"), nil), nil)
	if err != nil {
		return nil, err
	}
	var raw []byte
	err = c.send(req, &raw)
	return raw, err
}

// Download copies the resource at rawURL into w. The bearer token is only
// sent to the daemon's own host.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return 0, fmt.Errorf("parse frame url: %w", err)
	}
	target = c.base.ResolveReference(target)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, err
	}
	if c.token != "" && target.Host == c.base.Host {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return 0, &Error{Status: resp.StatusCode, Message: fmt.Sprintf("download %s returned status %d", target, resp.StatusCode)}
	}
	return io.Copy(w, resp.Body)
}

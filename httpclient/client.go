package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/kbukum/audioscribe/errors"
)

// Client talks to one sidecar.
type Client struct {
	hc   *http.Client
	cfg  Config
	base *url.URL
}

// New validates cfg and builds a Client with its own transport.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.InvalidInput("base_url", err.Error())
	}
	return &Client{
		hc: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   cfg.Timeout,
		},
		cfg:  cfg,
		base: base,
	}, nil
}

func (c *Client) Name() string { return c.cfg.Name }

func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// Do sends req and reads the whole body. For a non-2xx status the response
// is returned along with the classified error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, c.cfg.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(ctx, c.cfg.Name, fmt.Errorf("read body: %w", err))
	}
	out := &Response{StatusCode: resp.StatusCode, Headers: resp.Header.Clone(), Body: body}
	if appErr := ClassifyStatusCode(c.cfg.Name, resp.StatusCode, body); appErr != nil {
		return out, appErr
	}
	return out, nil
}

// DoJSON sends req and decodes a 2xx body into out. A body that does not
// decode is a non-retryable EXTERNAL_SERVICE_ERROR.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		appErr := errors.ExternalServiceError(c.cfg.Name, fmt.Errorf("decode response: %w", err))
		appErr.Retryable = false
		return appErr
	}
	return nil
}

// Healthy reports whether GET path answers 2xx.
func (c *Client) Healthy(ctx context.Context, path string) bool {
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path})
	return err == nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(req.Path).String(), body)
	if err != nil {
		if body != nil {
			body.Close()
		}
		return nil, errors.InvalidInput("base_url", err.Error())
	}

	h := httpReq.Header
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	for _, headers := range []map[string]string{c.cfg.Headers, req.Headers} {
		for k, v := range headers {
			h.Set(k, v)
		}
	}
	if c.cfg.BearerToken != "" {
		h.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	}
	return httpReq, nil
}

// encodeBody streams multipart bodies and readers as is and JSON-encodes
// anything else.
func encodeBody(body any) (io.ReadCloser, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartBody:
		return v.encode()
	case io.ReadCloser:
		return v, "", nil
	case io.Reader:
		return io.NopCloser(v), "", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", errors.Internal(fmt.Errorf("encode body: %w", err))
	}
	return io.NopCloser(bytes.NewReader(data)), "application/json", nil
}

package httpclient

import "net/http"

// Request describes an outbound HTTP request.
type Request struct {
	Method string
	// Path is appended to the client's BaseURL.
	Path string
	// Headers are request-specific headers, merged over client defaults.
	Headers map[string]string
	// Body is a *MultipartBody, an io.Reader sent as is, or a value to
	// JSON-encode.
	Body any
}

// Response is the result of an HTTP request.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

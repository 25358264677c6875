// Package httpclient is the HTTP client used to reach model sidecars.
//
// Requests resolve against a base URL, multipart audio uploads are
// streamed from disk, and failures come back as *errors.AppError:
// connection failures as SERVICE_UNAVAILABLE, deadlines as TIMEOUT,
// 5xx and 429 as retryable EXTERNAL_SERVICE_ERROR, other 4xx as
// non-retryable EXTERNAL_SERVICE_ERROR.
//
//	c, err := httpclient.New(httpclient.Config{Name: "whisper", BaseURL: "http://localhost:8387"})
//	resp, err := c.Do(ctx, httpclient.Request{
//		Method: http.MethodPost,
//		Path:   "/transcribe",
//		Body:   &httpclient.MultipartBody{Files: []httpclient.FileField{{FieldName: "audio", Path: "talk.mp3"}}},
//	})
package httpclient

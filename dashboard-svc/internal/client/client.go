// Package client wraps the remote restaurant REST API: one typed client per
// resource family, sharing a base Client that attaches the bearer token,
// encodes bodies and unwraps the API's response envelopes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"restodash/dashboard-svc/internal/domain"
	"restodash/dashboard-svc/internal/metrics"

	"go.uber.org/zap"
)

// maxBodyBytes bounds how much of a response is read into memory.
const maxBodyBytes = 16 << 20

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource yields the bearer token for the current session.
type TokenSource interface {
	Get(ctx context.Context) (string, bool, error)
}

type ListFilter struct {
	Owner string
}

func (f ListFilter) query() url.Values {
	if f.Owner == "" {
		return nil
	}
	return url.Values{"owner": []string{f.Owner}}
}

type Client struct {
	baseURL string
	http    HTTPClient
	tokens  TokenSource
	metrics *metrics.Metrics
	log     *zap.Logger
}

func New(baseURL string, httpClient HTTPClient, tokens TokenSource, m *metrics.Metrics, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		metrics: m,
		log:     log.Named("api"),
	}
}

// body is a request payload that knows its own wire encoding.
type body interface {
	encode() (io.Reader, string, error)
}

type jsonBody struct {
	value any
}

func (b jsonBody) encode() (io.Reader, string, error) {
	payload, err := json.Marshal(b.value)
	if err != nil {
		return nil, "", fmt.Errorf("encode json body: %w", err)
	}
	return bytes.NewReader(payload), "application/json", nil
}

// multipartBody carries an uploaded file in part "file"; fieldName names the
// attribute the server fills from it.
type multipartBody struct {
	fields    map[string]string
	fieldName string
	upload    *domain.Upload
}

func (b multipartBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range b.fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}
	if err := w.WriteField("fieldName", b.fieldName); err != nil {
		return nil, "", fmt.Errorf("write fieldName: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, uploadName(b.upload)))
	contentType := b.upload.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(b.upload.Data)
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(b.upload.Data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func uploadName(u *domain.Upload) string {
	if u.Filename == "" {
		return "upload"
	}
	return u.Filename
}

type call struct {
	resource string
	method   string
	path     string
	query    url.Values
	body     body
}

// do sends c and returns the raw response body of a 2xx answer. Anything
// else comes back as *APIError.
func (c *Client) do(ctx context.Context, rc call) ([]byte, error) {
	start := time.Now()
	data, err := c.send(ctx, rc)

	outcome := "ok"
	if apiErr, ok := err.(*APIError); ok {
		outcome = string(apiErr.Kind)
	} else if err != nil {
		outcome = "error"
	}
	c.metrics.ObserveAPI(rc.resource, rc.method, outcome, time.Since(start))

	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", rc.method),
			zap.String("path", rc.path),
			zap.Error(err),
		)
	}
	return data, err
}

func (c *Client) send(ctx context.Context, rc call) ([]byte, error) {
	target := c.baseURL + rc.path
	if len(rc.query) > 0 {
		target += "?" + rc.query.Encode()
	}

	var (
		reader      io.Reader
		contentType string
	)
	if rc.body != nil {
		var err error
		reader, contentType, err = rc.body.encode()
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.authorize(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, newTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, data)
	}
	return data, nil
}

// authorize attaches the stored token. A token store failure sends the
// request anonymously; the server then answers 401.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, ok, err := c.tokens.Get(ctx)
	if err != nil {
		c.log.Warn("token store unavailable", zap.Error(err))
		return
	}
	if ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// envelope is the API's usual {"data": {"data": X}} wrapping.
type envelope[T any] struct {
	Data struct {
		Data T `json:"data"`
	} `json:"data"`
}

// shallowEnvelope is {"data": X}, used by multipart updates.
type shallowEnvelope[T any] struct {
	Data T `json:"data"`
}

func unwrap[T any](data []byte) (T, error) {
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		var zero T
		return zero, fmt.Errorf("decode envelope: %w", err)
	}
	return env.Data.Data, nil
}

func unwrapShallow[T any](data []byte) (T, error) {
	var env shallowEnvelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		var zero T
		return zero, fmt.Errorf("decode envelope: %w", err)
	}
	return env.Data, nil
}

func resourcePath(base, id string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(id)
}

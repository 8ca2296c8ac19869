package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/appdeck/internal/model"
)

// HTTPClient implements CatalogClient using the appdeck HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	actor      string
	httpClient *http.Client
}

var _ CatalogClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request; actor, when non-empty, is sent as the
// author of mutations.
func NewHTTPClient(baseURL, token, actor string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		actor:      actor,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Applications ---

func appPath(namespace, name string) string {
	return "/v1/applications/" + url.PathEscape(namespace) + "/" + url.PathEscape(name)
}

func (c *HTTPClient) ListApplications(ctx context.Context) ([]*model.Application, error) {
	var resp struct {
		Applications []*model.Application `json:"applications"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/applications", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Applications, nil
}

func (c *HTTPClient) GetApplication(ctx context.Context, namespace, name string) (*model.Application, error) {
	var app model.Application
	if err := c.doJSON(ctx, http.MethodGet, appPath(namespace, name), nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *HTTPClient) CreateApplication(ctx context.Context, app *model.Application) (*model.Application, error) {
	var out model.Application
	if err := c.doJSON(ctx, http.MethodPost, "/v1/applications", app, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateApplication(ctx context.Context, namespace, name string, app *model.Application) (*model.Application, error) {
	var out model.Application
	if err := c.doJSON(ctx, http.MethodPut, appPath(namespace, name), app, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteApplication(ctx context.Context, namespace, name string) error {
	return c.doJSON(ctx, http.MethodDelete, appPath(namespace, name), nil, nil)
}

// --- Graphs ---

func (c *HTTPClient) GetGraph(ctx context.Context) (*model.Graph, error) {
	var g model.Graph
	if err := c.doJSON(ctx, http.MethodGet, "/v1/graph", nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *HTTPClient) GetDependencies(ctx context.Context, req *DependenciesRequest) (*model.Graph, error) {
	var g model.Graph
	if err := c.doJSON(ctx, http.MethodPost, "/v1/applications/dependencies", req, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// --- Named entries ---

// entrySegment returns the URL segment serving kind.
func entrySegment(kind model.EntryKind) (string, error) {
	switch kind {
	case model.KindComponent:
		return "components", nil
	case model.KindSubstitute:
		return "substitutes", nil
	case model.KindIngressAnnotation:
		return "ingress-annotations", nil
	}
	return "", fmt.Errorf("unknown entry kind %q", kind)
}

func (c *HTTPClient) ListEntries(ctx context.Context, kind model.EntryKind) ([]model.Entry, error) {
	seg, err := entrySegment(kind)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Entries []model.Entry `json:"entries"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/"+seg, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (c *HTTPClient) CreateEntry(ctx context.Context, kind model.EntryKind, name string) (*model.Entry, error) {
	seg, err := entrySegment(kind)
	if err != nil {
		return nil, err
	}
	var e model.Entry
	if err := c.doJSON(ctx, http.MethodPost, "/v1/"+seg, map[string]string{"name": name}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) RenameEntry(ctx context.Context, kind model.EntryKind, oldName, newName string) (*model.Entry, error) {
	seg, err := entrySegment(kind)
	if err != nil {
		return nil, err
	}
	var e model.Entry
	path := "/v1/" + seg + "/" + url.PathEscape(oldName)
	if err := c.doJSON(ctx, http.MethodPut, path, map[string]string{"name": newName}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, kind model.EntryKind, name string) error {
	seg, err := entrySegment(kind)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, "/v1/"+seg+"/"+url.PathEscape(name), nil, nil)
}

// --- Repository sync ---

func (c *HTTPClient) SyncStatus(ctx context.Context) (*SyncStatus, error) {
	var st SyncStatus
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sync/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *HTTPClient) Pull(ctx context.Context) (*SyncResult, error) {
	var res SyncResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sync/pull", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Push(ctx context.Context, commitMessage string) (*SyncResult, error) {
	var res SyncResult
	body := map[string]string{"commit_message": commitMessage}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sync/push", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// --- Audit and events ---

func (c *HTTPClient) ListAudit(ctx context.Context, subject string, limit int) ([]*model.Event, error) {
	q := url.Values{}
	if subject != "" {
		q.Set("subject", subject)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/v1/audit"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Events []*model.Event `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// ErrStopStream may be returned by a StreamEvents callback to end the stream
// without an error.
var ErrStopStream = errors.New("stop stream")

// StreamEvents reads the server's event stream and calls fn for every event
// until ctx is done, the server closes the stream or fn returns an error.
func (c *HTTPClient) StreamEvents(ctx context.Context, topics []string, fn func(StreamEvent) error) error {
	path := "/v1/events/stream"
	if len(topics) > 0 {
		path += "?" + url.Values{"topics": {strings.Join(topics, ",")}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, body)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var evt StreamEvent
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "id:"):
			evt.ID = strings.TrimPrefix(line, "id:")
		case strings.HasPrefix(line, "event:"):
			evt.Topic = strings.TrimPrefix(line, "event:")
		case strings.HasPrefix(line, "data:"):
			evt.Data = []byte(strings.TrimPrefix(line, "data:"))
		case line == "" && evt.Data != nil:
			if err := fn(evt); err != nil {
				if errors.Is(err, ErrStopStream) {
					return nil
				}
				return err
			}
			evt = StreamEvent{}
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	return scanner.Err()
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func apiError(status int, body []byte) *APIError {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &APIError{StatusCode: status, Message: errResp.Error}
	}
	return &APIError{StatusCode: status, Message: string(body)}
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.actor != "" {
		req.Header.Set("X-Deck-Actor", c.actor)
	}
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

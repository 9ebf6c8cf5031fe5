package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// HTTPClient is the slice of *http.Client the transport needs; it keeps the
// transport mockable in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Transport issues authenticated REST and GraphQL calls against one GitLab
// instance. The bearer header is derived from the token source per call, so
// a refreshed credential is picked up without rebuilding the transport.
type Transport struct {
	baseURL    string
	graphqlURL string
	tokens     oauth2.TokenSource
	httpClient HTTPClient
	logger     *slog.Logger

	// gqlHeader caches the derived GraphQL request headers. It is
	// discarded when a credential failure is classified, forcing the
	// next call to re-derive them from the token source.
	mu        sync.Mutex
	gqlHeader http.Header
}

func NewTransport(baseURL string, tokens oauth2.TokenSource, httpClient HTTPClient, logger *slog.Logger) *Transport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	base := strings.TrimRight(baseURL, "/")
	return &Transport{
		baseURL:    base,
		graphqlURL: deriveGraphQLURL(base),
		tokens:     tokens,
		httpClient: httpClient,
		logger:     logger,
	}
}

// deriveGraphQLURL maps the versioned REST base URL onto the instance's
// GraphQL endpoint: https://host/api/v4 -> https://host/api/graphql.
func deriveGraphQLURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	u = strings.TrimSuffix(u, "/v4")
	return u + "/graphql"
}

// BaseURL returns the REST base the transport was built with.
func (t *Transport) BaseURL() string { return t.baseURL }

// RequestError is a non-2xx REST response, annotated with the endpoint that
// triggered it so failures can be logged with context.
type RequestError struct {
	Status   int
	Endpoint string
	Body     string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("gitlab api %s returned status %d: %s", e.Endpoint, e.Status, e.Body)
}

func (t *Transport) bearer() (string, error) {
	tok, err := t.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("failed to read access token: %w", err)
	}
	return "Bearer " + tok.AccessToken, nil
}

func (t *Transport) do(ctx context.Context, method, path string, body any) ([]byte, http.Header, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	auth, err := t.bearer()
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.Header, &RequestError{
			Status:   resp.StatusCode,
			Endpoint: method + " " + path,
			Body:     strings.TrimSpace(string(raw)),
		}
	}
	return raw, resp.Header, nil
}

// GetJSON issues a GET and decodes the response into out. The response
// headers are returned so callers can follow pagination links.
func (t *Transport) GetJSON(ctx context.Context, path string, out any) (http.Header, error) {
	raw, header, err := t.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return header, err
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return header, fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return header, nil
}

func (t *Transport) PostJSON(ctx context.Context, path string, body, out any) error {
	raw, _, err := t.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}

func (t *Transport) PutJSON(ctx context.Context, path string, body, out any) error {
	raw, _, err := t.do(ctx, http.MethodPut, path, body)
	if err != nil {
		return err
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}

func (t *Transport) Delete(ctx context.Context, path string) error {
	_, _, err := t.do(ctx, http.MethodDelete, path, nil)
	return err
}

// graphQLRequest is the wire form of a GraphQL call.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// GraphQLError is one entry of a GraphQL error list.
type GraphQLError struct {
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions,omitempty"`
}

// GraphQLErrors carries the whole error list so the classifier can inspect
// embedded error codes.
type GraphQLErrors struct {
	Operation string
	Errors    []GraphQLError
}

func (e *GraphQLErrors) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return fmt.Sprintf("graphql %s failed: %s", e.Operation, strings.Join(msgs, "; "))
}

func (t *Transport) graphqlHeaders() (http.Header, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gqlHeader != nil {
		return t.gqlHeader, nil
	}
	auth, err := t.bearer()
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Authorization", auth)
	h.Set("Content-Type", "application/json")
	t.gqlHeader = h
	return h, nil
}

// InvalidateGraphQL drops the cached GraphQL headers; the next Query call
// re-derives them from the token source.
func (t *Transport) InvalidateGraphQL() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gqlHeader = nil
}

// Query issues a GraphQL operation and decodes the data object into out.
// Mutations go through the same path.
func (t *Transport) Query(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	b, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to encode graphql request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.graphqlURL, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("failed to create graphql request: %w", err)
	}
	headers, err := t.graphqlHeaders()
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graphql %s failed: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{
			Status:   resp.StatusCode,
			Endpoint: "POST " + t.graphqlURL + " (" + operation + ")",
			Body:     strings.TrimSpace(string(raw)),
		}
	}

	var env graphQLEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode graphql response for %s: %w", operation, err)
	}
	if len(env.Errors) > 0 {
		return &GraphQLErrors{Operation: operation, Errors: env.Errors}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode graphql data for %s: %w", operation, err)
		}
	}
	return nil
}

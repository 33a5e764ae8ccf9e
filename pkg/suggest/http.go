package suggest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// HTTPSource queries an endpoint with GET ?term=<fragment> and expects
// {"results": [{"label": ..., "value": ...}]}.
type HTTPSource struct {
	endpoint *url.URL
	client   *http.Client
}

// NewHTTPSource creates a source for endpoint. A nil client uses a client
// with a 10 second timeout.
func NewHTTPSource(endpoint string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid suggestion endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid suggestion endpoint %q: scheme must be http or https", endpoint)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{endpoint: u, client: client}, nil
}

// Suggest implements Source.
func (s *HTTPSource) Suggest(ctx context.Context, term string) ([]Item, error) {
	u := *s.endpoint
	q := u.Query()
	q.Set("term", term)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes)) //nolint:errcheck
		return nil, fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}
	return DecodeResults(body)
}

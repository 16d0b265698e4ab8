package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"statuspage-cron/models"
)

// StatusPage is the read-only part of the statuspage.io API the updater needs.
// Close releases the connections held by the client.
type StatusPage interface {
	ListPages(ctx context.Context) ([]models.Page, error)
	ListComponents(ctx context.Context, page models.Page) ([]models.Component, error)
	ListComponentGroups(ctx context.Context, page models.Page) ([]models.ComponentGroup, error)
	Close() error
}

// FetchError is returned for every failed request: transport failure,
// unexpected status code or a body that does not decode.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("Status code %d accessing %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusPageIO talks to one statuspage.io compatible API root.
type StatusPageIO struct {
	rootURL   string
	apiKey    string
	transport *http.Transport
	http      *http.Client
}

// NewStatusPageIO creates a client with its own connection pool. rootURL must
// end with "/"; models.NewSource takes care of that.
func NewStatusPageIO(rootURL, apiKey string) *StatusPageIO {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &StatusPageIO{
		rootURL:   rootURL,
		apiKey:    apiKey,
		transport: transport,
		http:      &http.Client{Transport: transport, Timeout: 30 * time.Second},
	}
}

func (s *StatusPageIO) ListPages(ctx context.Context) ([]models.Page, error) {
	var pages []models.Page
	err := s.fetchResource(ctx, s.rootURL+"pages", &pages)
	return pages, err
}

func (s *StatusPageIO) ListComponents(ctx context.Context, page models.Page) ([]models.Component, error) {
	var components []models.Component
	err := s.fetchResource(ctx, s.rootURL+"pages/"+page.ID+"/components", &components)
	return components, err
}

func (s *StatusPageIO) ListComponentGroups(ctx context.Context, page models.Page) ([]models.ComponentGroup, error) {
	var groups []models.ComponentGroup
	err := s.fetchResource(ctx, s.rootURL+"pages/"+page.ID+"/component-groups", &groups)
	return groups, err
}

// Close drops idle connections. In-flight requests are cancelled through their context.
func (s *StatusPageIO) Close() error {
	s.transport.CloseIdleConnections()
	return nil
}

func (s *StatusPageIO) fetchResource(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "OAuth "+s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can go back to the pool.
		_, _ = io.Copy(io.Discard, resp.Body)
		return &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	if err := decodeBody(resp.Body, out); err != nil {
		return &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

func decodeBody(body io.Reader, out any) error {
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// Factory creates clients; the updater opens one per source per tick.
type Factory interface {
	Create(rootURL, apiKey string) StatusPage
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(rootURL, apiKey string) StatusPage

func (f FactoryFunc) Create(rootURL, apiKey string) StatusPage {
	return f(rootURL, apiKey)
}

// DefaultFactory creates real HTTP clients.
var DefaultFactory Factory = FactoryFunc(func(rootURL, apiKey string) StatusPage {
	return NewStatusPageIO(rootURL, apiKey)
})

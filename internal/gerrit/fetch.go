package gerrit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// PageSource fetches a change page over HTTP. It implements Source.
type PageSource struct {
	url    string
	client *http.Client
}

// DefaultFetchTimeout bounds one page fetch.
const DefaultFetchTimeout = 10 * time.Second

// NewPageSource creates a page source for the given change URL. A nil client
// gets a default with DefaultFetchTimeout.
func NewPageSource(url string, client *http.Client) *PageSource {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &PageSource{url: url, client: client}
}

// URL returns the change page URL.
func (s *PageSource) URL() string { return s.url }

// Load fetches and parses the page. A transport-level failure gets exactly
// one automatic re-attempt on a fresh connection; a second failure is
// returned to the caller, which maps it to a communication-failure outcome.
func (s *PageSource) Load(ctx context.Context) (*Node, error) {
	doc, err := s.fetch(ctx)
	if err == nil {
		return doc, nil
	}
	var uerr *url.Error
	if !errors.As(err, &uerr) || ctx.Err() != nil {
		// Not a transport failure (e.g. a non-200 page); nothing to retry.
		return nil, err
	}
	s.client.CloseIdleConnections()
	return s.fetch(ctx)
}

// fetch performs a single GET and parse of the page.
func (s *PageSource) fetch(ctx context.Context) (*Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("change page returned HTTP %d", resp.StatusCode)
	}
	return Parse(resp.Body)
}

// Package jira is a minimal Jira Cloud REST v3 client covering the three
// calls the bridge makes: issue lookup, comment creation, and remote-link
// creation. Branching is driven by the response status code only; response
// bodies are never read except for the structured fields of a successful
// lookup.
package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gjira/internal/adf"
	"gjira/internal/errors"
	"gjira/internal/validate"
)

// APIBase is the fixed Jira Cloud REST base. The tenant is compile-time
// constant; validate.IsAllowedAPIBase is still asserted at construction.
const APIBase = "https://thinkfree.atlassian.net/rest/api/3"

// BrowseBase is the fixed base for human-facing issue URLs.
const BrowseBase = "https://thinkfree.atlassian.net/browse"

// DefaultTimeout bounds one API round trip.
const DefaultTimeout = 15 * time.Second

// Credentials authenticate as a Jira Cloud user: email plus API token,
// sent as a Basic Authorization header.
type Credentials struct {
	Email string
	Token string
}

// IssueInfo is the read model of an issue lookup: the only structured data
// ever read from a Jira response.
type IssueInfo struct {
	Key      string `json:"key"`
	Summary  string `json:"summary"`
	Status   string `json:"status"`
	Assignee string `json:"assignee"`
}

// RemoteLink is the payload for the remote-link endpoint. GlobalID makes the
// call idempotent: posting the same GlobalID again updates the existing link
// (HTTP 200) instead of creating a duplicate (HTTP 201).
type RemoteLink struct {
	GlobalID string     `json:"globalId,omitempty"`
	Object   LinkObject `json:"object"`
}

// LinkObject describes the linked resource.
type LinkObject struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Client calls the Jira Cloud REST API.
type Client struct {
	base  string
	creds Credentials
	http  *http.Client
}

// NewClient creates a client against the fixed API base. The base hostname
// is asserted against the allowlist to catch configuration drift; a failure
// here is a programming error surfaced as INTERNAL.
func NewClient(creds Credentials, httpClient *http.Client) (*Client, error) {
	if !validate.IsAllowedAPIBase(APIBase) {
		return nil, errors.NewInternal(fmt.Errorf("API base %q is not an allowed Jira host", APIBase))
	}
	return newClient(APIBase, creds, httpClient), nil
}

// newClient creates a client against an arbitrary base. Tests use it to
// point at a local server.
func newClient(base string, creds Credentials, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{base: base, creds: creds, http: httpClient}
}

// IssueURL returns the human-facing browse URL for an issue key.
func IssueURL(key string) string {
	return BrowseBase + "/" + key
}

// GetIssue fetches summary, status, and assignee for an issue. Success is
// exactly HTTP 200.
func (c *Client) GetIssue(ctx context.Context, key string) (*IssueInfo, error) {
	url := fmt.Sprintf("%s/issue/%s?fields=summary,status,assignee", c.base, key)

	resp, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, key)
	}

	var payload struct {
		Key    string `json:"key"`
		Fields struct {
			Summary string `json:"summary"`
			Status  struct {
				Name string `json:"name"`
			} `json:"status"`
			Assignee struct {
				DisplayName string `json:"displayName"`
			} `json:"assignee"`
		} `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("decode issue response: %w", err))
	}

	return &IssueInfo{
		Key:      payload.Key,
		Summary:  payload.Fields.Summary,
		Status:   payload.Fields.Status.Name,
		Assignee: payload.Fields.Assignee.DisplayName,
	}, nil
}

// AddComment posts an ADF comment on an issue. Success is HTTP 201; 200 is
// accepted as well. The response body is discarded.
func (c *Client) AddComment(ctx context.Context, key string, body adf.Document) error {
	url := fmt.Sprintf("%s/issue/%s/comment", c.base, key)
	payload := map[string]any{"body": body}

	resp, err := c.do(ctx, http.MethodPost, url, payload)
	if err != nil {
		return errors.NewNetwork(err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, key)
	}
	return nil
}

// AddRemoteLink creates or updates a remote link on an issue. Success is
// HTTP 201 (created) or 200 (existing GlobalID updated). The response body
// is discarded.
func (c *Client) AddRemoteLink(ctx context.Context, key string, link RemoteLink) error {
	url := fmt.Sprintf("%s/issue/%s/remotelink", c.base, key)

	resp, err := c.do(ctx, http.MethodPost, url, link)
	if err != nil {
		return errors.NewNetwork(err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, key)
	}
	return nil
}

// do performs one authenticated request. A nil body sends no payload.
func (c *Client) do(ctx context.Context, method, url string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Basic "+basicAuth(c.creds))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.http.Do(req)
}

// basicAuth encodes the credentials for the Authorization header.
func basicAuth(creds Credentials) string {
	return base64.StdEncoding.EncodeToString([]byte(creds.Email + ":" + creds.Token))
}

// statusError maps a rejection status code to its fixed user-facing error.
// Unknown codes fall back to a message carrying the raw numeric code. The
// response body is deliberately not consulted.
func statusError(status int, key string) *errors.BridgeError {
	switch status {
	case http.StatusBadRequest:
		return errors.NewInvalidRequest("Jira rejected the request body")
	case http.StatusUnauthorized:
		return errors.NewAuthFailed()
	case http.StatusForbidden:
		return errors.NewNoPermission(key)
	case http.StatusNotFound:
		return errors.NewNotFound(key)
	case http.StatusTooManyRequests:
		return errors.NewRateLimited()
	default:
		return errors.NewRemoteRejected(status)
	}
}

// drain discards and closes a response body so the connection can be
// reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

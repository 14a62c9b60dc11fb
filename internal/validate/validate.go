// Package validate contains the pure predicate functions that gate every
// untrusted value before it reaches a URL path, a network request, or the
// settings store. All functions are total: they never panic and never
// return errors, only booleans or normalized values.
package validate

import (
	"net/url"
	"regexp"
	"strings"
)

// issueKeyPattern matches a Jira issue key: one capital letter, one or more
// letters/digits, a hyphen, one or more digits. Anchored on both ends.
var issueKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]+-\d+$`)

// AllowedGerritOrigins is the fixed allowlist of Gerrit origins. A URL is
// trusted only when its scheme+host+port exactly equals one of these.
var AllowedGerritOrigins = []string{
	"http://gerrit.thinkfree.com",
	"https://gerrit.thinkfree.com",
}

// JiraAPIHost is the only hostname the Jira client may talk to. The API base
// is a compile-time constant, but the hostname is still asserted at client
// construction to catch configuration drift.
const JiraAPIHost = "thinkfree.atlassian.net"

// IsValidIssueKey reports whether key matches the issue-key grammar exactly.
// Case-sensitive: "tf-123" is not a valid key.
func IsValidIssueKey(key string) bool {
	return issueKeyPattern.MatchString(key)
}

// NormalizeIssueKey trims and uppercases user input, then validates it.
// Returns the normalized key and true, or "" and false.
func NormalizeIssueKey(key string) (string, bool) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if !IsValidIssueKey(key) {
		return "", false
	}
	return key, true
}

// IsAllowedOrigin reports whether the URL's origin (scheme+host+port) exactly
// matches an allowlisted Gerrit origin. The path, query, and fragment are
// ignored; a hostile URL embedding an allowed origin in its path does not
// pass.
func IsAllowedOrigin(rawURL string) bool {
	origin, ok := originOf(rawURL)
	if !ok {
		return false
	}
	for _, allowed := range AllowedGerritOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// IsAllowedAPIBase reports whether the API base URL's hostname exactly equals
// the fixed Jira Cloud hostname.
func IsAllowedAPIBase(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Hostname() == JiraAPIHost
}

// originOf returns the scheme://host[:port] origin of rawURL.
func originOf(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.Scheme + "://" + u.Host, true
}

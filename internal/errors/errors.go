package errors

import "fmt"

// ErrorCode represents a bridge error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"    // 400
	ErrNoIssueKey       ErrorCode = "NO_ISSUE_KEY"       // 422
	ErrOriginNotAllowed ErrorCode = "ORIGIN_NOT_ALLOWED" // 403
	ErrNotConfigured    ErrorCode = "NOT_CONFIGURED"     // 428
	ErrAuthFailed       ErrorCode = "AUTH_FAILED"        // 401
	ErrNoPermission     ErrorCode = "NO_PERMISSION"      // 403
	ErrNotFound         ErrorCode = "NOT_FOUND"          // 404
	ErrRateLimited      ErrorCode = "RATE_LIMITED"       // 429
	ErrNetwork          ErrorCode = "NETWORK_ERROR"      // 502
	ErrCommFailure      ErrorCode = "COMM_FAILURE"       // 502
	ErrRemoteRejected   ErrorCode = "REMOTE_REJECTED"    // carries remote status
	ErrInternal         ErrorCode = "INTERNAL"           // 500
)

// BridgeError represents a structured error with code, status, and details.
// Remote response bodies are never placed in Message or Details; only the
// status-code-derived reason is surfaced.
type BridgeError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *BridgeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *BridgeError {
	return &BridgeError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNoIssueKey creates the extraction-miss error: no issue key could be
// found on the change page and no override was given.
func NewNoIssueKey() *BridgeError {
	return &BridgeError{
		Code:    ErrNoIssueKey,
		Status:  422,
		Message: "no issue key found on the change page; pass one explicitly with --key",
	}
}

// NewOriginNotAllowed creates the security rejection for a URL whose origin
// is not in the Gerrit allowlist.
func NewOriginNotAllowed(url string) *BridgeError {
	return &BridgeError{
		Code:    ErrOriginNotAllowed,
		Status:  403,
		Message: fmt.Sprintf("URL origin is not an allowed Gerrit host: %s", url),
		Details: map[string]any{"url": url},
	}
}

// NewNotConfigured creates the missing-credentials error. Distinct from
// AUTH_FAILED: nothing was sent to Jira yet.
func NewNotConfigured() *BridgeError {
	return &BridgeError{
		Code:    ErrNotConfigured,
		Status:  428,
		Message: "Jira credentials are not configured; run 'gjira config set email <email>' and 'gjira config set api_token <token>'",
	}
}

// NewAuthFailed creates the 401 remote-rejection error.
func NewAuthFailed() *BridgeError {
	return &BridgeError{
		Code:    ErrAuthFailed,
		Status:  401,
		Message: "Jira rejected the credentials; check email and API token",
	}
}

// NewNoPermission creates the 403 remote-rejection error.
func NewNoPermission(key string) *BridgeError {
	return &BridgeError{
		Code:    ErrNoPermission,
		Status:  403,
		Message: fmt.Sprintf("no permission to modify issue %s", key),
		Details: map[string]any{"issue_key": key},
	}
}

// NewNotFound creates a 404 error for an unknown issue key.
func NewNotFound(key string) *BridgeError {
	return &BridgeError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("issue not found: %s", key),
		Details: map[string]any{"issue_key": key},
	}
}

// NewRateLimited creates the 429 remote-rejection error.
func NewRateLimited() *BridgeError {
	return &BridgeError{
		Code:    ErrRateLimited,
		Status:  429,
		Message: "Jira is rate limiting requests; try again later",
	}
}

// NewNetwork creates the transport-failure error: the request never got a
// response. The underlying cause is kept in details for logs, not for users.
func NewNetwork(err error) *BridgeError {
	be := &BridgeError{
		Code:    ErrNetwork,
		Status:  502,
		Message: "could not reach Jira; check network connectivity",
	}
	if err != nil {
		be.Details = map[string]any{"cause": err.Error()}
	}
	return be
}

// NewCommFailure creates the page-source communication error, reported after
// the single automatic re-fetch attempt also failed.
func NewCommFailure(url string) *BridgeError {
	return &BridgeError{
		Code:    ErrCommFailure,
		Status:  502,
		Message: "could not load the change page; verify the URL is reachable and retry",
		Details: map[string]any{"url": url},
	}
}

// NewRemoteRejected creates the fallback remote-rejection error for a status
// code with no fixed mapping. The raw code is always reported.
func NewRemoteRejected(status int) *BridgeError {
	return &BridgeError{
		Code:    ErrRemoteRejected,
		Status:  status,
		Message: fmt.Sprintf("Jira rejected the request (HTTP %d)", status),
		Details: map[string]any{"http_status": status},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *BridgeError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &BridgeError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a BridgeError with the given code.
func Is(err error, code ErrorCode) bool {
	if bErr, ok := err.(*BridgeError); ok {
		return bErr.Code == code
	}
	return false
}

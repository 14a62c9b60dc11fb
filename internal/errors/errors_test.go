package errors

import (
	"fmt"
	"testing"
)

func TestBridgeError_Error(t *testing.T) {
	err := &BridgeError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "issue not found: TF-1",
	}

	expected := "NOT_FOUND: issue not found: TF-1"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewNoIssueKey(t *testing.T) {
	err := NewNoIssueKey()

	if err.Code != ErrNoIssueKey {
		t.Errorf("Code = %q, want %q", err.Code, ErrNoIssueKey)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
}

func TestNewOriginNotAllowed(t *testing.T) {
	err := NewOriginNotAllowed("https://evil.com/change/1")

	if err.Code != ErrOriginNotAllowed {
		t.Errorf("Code = %q, want %q", err.Code, ErrOriginNotAllowed)
	}
	if err.Status != 403 {
		t.Errorf("Status = %d, want 403", err.Status)
	}
	if err.Details["url"] != "https://evil.com/change/1" {
		t.Errorf("Details[url] = %v, want the offending URL", err.Details["url"])
	}
}

func TestNewNotConfigured(t *testing.T) {
	err := NewNotConfigured()

	if err.Code != ErrNotConfigured {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotConfigured)
	}
}

func TestNewNoPermission(t *testing.T) {
	err := NewNoPermission("TF-123")

	if err.Code != ErrNoPermission {
		t.Errorf("Code = %q, want %q", err.Code, ErrNoPermission)
	}
	if err.Details["issue_key"] != "TF-123" {
		t.Errorf("Details[issue_key] = %v, want %q", err.Details["issue_key"], "TF-123")
	}
}

func TestNewRemoteRejected_ReportsRawStatus(t *testing.T) {
	err := NewRemoteRejected(418)

	if err.Status != 418 {
		t.Errorf("Status = %d, want 418", err.Status)
	}
	if err.Details["http_status"] != 418 {
		t.Errorf("Details[http_status] = %v, want 418", err.Details["http_status"])
	}
	want := "Jira rejected the request (HTTP 418)"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestNewNetwork_KeepsCauseInDetails(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := NewNetwork(cause)

	if err.Code != ErrNetwork {
		t.Errorf("Code = %q, want %q", err.Code, ErrNetwork)
	}
	if err.Details["cause"] != cause.Error() {
		t.Errorf("Details[cause] = %v, want %q", err.Details["cause"], cause.Error())
	}
}

func TestNewInternal_NilError(t *testing.T) {
	err := NewInternal(nil)

	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	err := NewNoIssueKey()

	if !Is(err, ErrNoIssueKey) {
		t.Error("Is() should return true for matching code")
	}
	if Is(err, ErrNotFound) {
		t.Error("Is() should return false for non-matching code")
	}
	if Is(fmt.Errorf("plain"), ErrNoIssueKey) {
		t.Error("Is() should return false for non-BridgeError")
	}
}

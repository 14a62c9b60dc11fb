// Package ops implements the bridge operations behind the CLI commands and
// MCP tools: extracting change context, looking up issues, posting comments,
// and creating remote links. Each operation is a pure function over an Env
// plus an Input struct, returning an Output struct or a structured error.
package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"gjira/internal/adf"
	"gjira/internal/config"
	"gjira/internal/errors"
	"gjira/internal/gerrit"
	"gjira/internal/jira"
	"gjira/internal/logger"
	"gjira/internal/store"
	"gjira/internal/validate"
)

// History limits
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// JiraAPI is the slice of the Jira client the operations call.
type JiraAPI interface {
	GetIssue(ctx context.Context, key string) (*jira.IssueInfo, error)
	AddComment(ctx context.Context, key string, body adf.Document) error
	AddRemoteLink(ctx context.Context, key string, link jira.RemoteLink) error
}

// Env carries the shared dependencies of every operation. NewSource and
// NewJira are factories so tests can substitute fakes and local servers.
type Env struct {
	DB     *sql.DB
	Config *config.Config
	Log    *logger.Logger

	NewSource func(url string) gerrit.Source
	NewJira   func(creds jira.Credentials) (JiraAPI, error)
}

// NewEnv builds an Env with the real page source and Jira client.
func NewEnv(db *sql.DB, cfg *config.Config, log *logger.Logger) *Env {
	return &Env{
		DB:     db,
		Config: cfg,
		Log:    log,
		NewSource: func(url string) gerrit.Source {
			return gerrit.NewPageSource(url, &http.Client{Timeout: cfg.FetchTimeout()})
		},
		NewJira: func(creds jira.Credentials) (JiraAPI, error) {
			return jira.NewClient(creds, &http.Client{Timeout: cfg.APITimeout()})
		},
	}
}

// newRunID generates a ULID for a run.
func newRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// checkOrigin rejects change URLs whose origin is not an allowed Gerrit host.
func checkOrigin(url string) error {
	if url == "" {
		return errors.NewInvalidRequest("url is required")
	}
	if !validate.IsAllowedOrigin(url) {
		return errors.NewOriginNotAllowed(url)
	}
	return nil
}

// resolveKey picks the issue key for an operation. An explicit override
// always wins over the extracted key; with neither present the operation
// cannot proceed.
func resolveKey(override, extracted string) (string, error) {
	if override != "" {
		key, ok := validate.NormalizeIssueKey(override)
		if !ok {
			return "", errors.NewInvalidRequest(fmt.Sprintf("invalid issue key: %q", override))
		}
		return key, nil
	}
	if extracted != "" {
		return extracted, nil
	}
	return "", errors.NewNoIssueKey()
}

// credentials resolves Jira credentials: environment variables first, then
// the settings store. Missing credentials are a terminal NOT_CONFIGURED.
func (e *Env) credentials() (jira.Credentials, error) {
	creds := jira.Credentials{
		Email: os.Getenv("GJIRA_EMAIL"),
		Token: os.Getenv("GJIRA_API_TOKEN"),
	}
	if creds.Email == "" {
		email, err := store.GetSetting(e.DB, store.KeyEmail)
		if err != nil {
			return jira.Credentials{}, err
		}
		creds.Email = email
	}
	if creds.Token == "" {
		token, err := store.GetSetting(e.DB, store.KeyAPIToken)
		if err != nil {
			return jira.Credentials{}, err
		}
		creds.Token = token
	}
	if creds.Email == "" || creds.Token == "" {
		return jira.Credentials{}, errors.NewNotConfigured()
	}
	return creds, nil
}

// loadContext fetches the change page and extracts its context, retrying
// until a key shows up or the configured window elapses. A source failure
// maps to the communication-failure outcome.
func (e *Env) loadContext(ctx context.Context, src gerrit.Source) (*gerrit.ChangeContext, error) {
	cctx, err := gerrit.ExtractWithRetry(ctx, src, e.Config.RetryTimeout())
	if err != nil {
		e.Log.Error("change page load failed", err)
		return nil, errors.NewCommFailure(src.URL())
	}
	return cctx, nil
}

// recordRun persists one run-history row. Recording failures are logged and
// otherwise ignored: history must never fail an action that already
// succeeded against Jira.
func (e *Env) recordRun(id, action, issueKey, url, outcome, code string) {
	err := store.RecordRun(e.DB, &store.Run{
		ID:        id,
		Action:    action,
		IssueKey:  issueKey,
		URL:       url,
		Outcome:   outcome,
		Code:      code,
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		e.Log.Error("failed to record run", err)
	}
}

// finishRun records the outcome of an operation and returns err unchanged.
func (e *Env) finishRun(id, action, issueKey, url string, err error) error {
	outcome, code := "ok", ""
	if err != nil {
		outcome = "error"
		if bErr, ok := err.(*errors.BridgeError); ok {
			code = string(bErr.Code)
		} else {
			code = string(errors.ErrInternal)
		}
	}
	e.recordRun(id, action, issueKey, url, outcome, code)
	return err
}

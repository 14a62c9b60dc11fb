package ops

import (
	"context"
	"fmt"

	"gjira/internal/errors"
	"gjira/internal/jira"
	"gjira/internal/validate"
)

// IssueInput contains parameters for the Issue operation.
type IssueInput struct {
	// Key is the issue to look up.
	Key string
}

// IssueOutput contains the result of the Issue operation.
type IssueOutput struct {
	RunID    string          `json:"run_id"`
	Issue    *jira.IssueInfo `json:"issue"`
	IssueURL string          `json:"issue_url"`
}

// Issue looks up an issue's summary, status, and assignee.
func Issue(ctx context.Context, env *Env, input IssueInput) (*IssueOutput, error) {
	runID := newRunID()

	key, ok := validate.NormalizeIssueKey(input.Key)
	if !ok {
		err := errors.NewInvalidRequest(fmt.Sprintf("invalid issue key: %q", input.Key))
		return nil, env.finishRun(runID, "issue", input.Key, "", err)
	}

	creds, err := env.credentials()
	if err != nil {
		return nil, env.finishRun(runID, "issue", key, "", err)
	}
	client, err := env.NewJira(creds)
	if err != nil {
		return nil, env.finishRun(runID, "issue", key, "", err)
	}

	info, err := client.GetIssue(ctx, key)
	if err != nil {
		return nil, env.finishRun(runID, "issue", key, "", err)
	}

	env.finishRun(runID, "issue", key, "", nil)
	return &IssueOutput{
		RunID:    runID,
		Issue:    info,
		IssueURL: jira.IssueURL(key),
	}, nil
}

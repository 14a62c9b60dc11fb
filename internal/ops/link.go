package ops

import (
	"context"

	"gjira/internal/jira"
)

// LinkInput contains parameters for the Link operation.
type LinkInput struct {
	// URL is the change page to link.
	URL string
	// Key optionally overrides the extracted issue key.
	Key string
}

// LinkOutput contains the result of the Link operation.
type LinkOutput struct {
	RunID    string          `json:"run_id"`
	IssueKey string          `json:"issue_key"`
	IssueURL string          `json:"issue_url"`
	Link     jira.RemoteLink `json:"link"`
}

// Link attaches the change page to the issue as a remote link. Linking the
// same change again updates the existing link instead of duplicating it, as
// long as the change carries a number or Change-Id.
func Link(ctx context.Context, env *Env, input LinkInput) (*LinkOutput, error) {
	runID := newRunID()

	if err := checkOrigin(input.URL); err != nil {
		return nil, env.finishRun(runID, "link", input.Key, input.URL, err)
	}

	cctx, err := env.loadContext(ctx, env.NewSource(input.URL))
	if err != nil {
		return nil, env.finishRun(runID, "link", input.Key, input.URL, err)
	}

	key, err := resolveKey(input.Key, cctx.IssueKey)
	if err != nil {
		return nil, env.finishRun(runID, "link", input.Key, input.URL, err)
	}

	link := jira.BuildRemoteLink(cctx)

	creds, err := env.credentials()
	if err != nil {
		return nil, env.finishRun(runID, "link", key, input.URL, err)
	}
	client, err := env.NewJira(creds)
	if err != nil {
		return nil, env.finishRun(runID, "link", key, input.URL, err)
	}

	if err := client.AddRemoteLink(ctx, key, link); err != nil {
		return nil, env.finishRun(runID, "link", key, input.URL, err)
	}

	env.finishRun(runID, "link", key, input.URL, nil)
	return &LinkOutput{
		RunID:    runID,
		IssueKey: key,
		IssueURL: jira.IssueURL(key),
		Link:     link,
	}, nil
}

package ops

import (
	"context"

	"gjira/internal/gerrit"
	"gjira/internal/jira"
)

// ContextInput contains parameters for the Context operation.
type ContextInput struct {
	// URL is the change page to extract from.
	URL string
	// Key optionally overrides the extracted issue key.
	Key string
}

// ContextOutput contains the result of the Context operation.
type ContextOutput struct {
	RunID    string                `json:"run_id"`
	Context  *gerrit.ChangeContext `json:"context"`
	IssueURL string                `json:"issue_url,omitempty"`
}

// Context fetches a change page and reports its extracted context.
// Extraction itself never fails; a missing issue key is reported as an empty
// field, not an error. Only an unreachable page or a disallowed origin fails
// the operation.
func Context(ctx context.Context, env *Env, input ContextInput) (*ContextOutput, error) {
	runID := newRunID()

	if err := checkOrigin(input.URL); err != nil {
		return nil, env.finishRun(runID, "context", input.Key, input.URL, err)
	}

	cctx, err := env.loadContext(ctx, env.NewSource(input.URL))
	if err != nil {
		return nil, env.finishRun(runID, "context", input.Key, input.URL, err)
	}

	if input.Key != "" {
		key, err := resolveKey(input.Key, cctx.IssueKey)
		if err != nil {
			return nil, env.finishRun(runID, "context", input.Key, input.URL, err)
		}
		cctx.IssueKey = key
	}

	output := &ContextOutput{
		RunID:   runID,
		Context: cctx,
	}
	if cctx.IssueKey != "" {
		output.IssueURL = jira.IssueURL(cctx.IssueKey)
	}

	env.finishRun(runID, "context", cctx.IssueKey, input.URL, nil)
	return output, nil
}

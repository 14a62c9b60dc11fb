package ops

import (
	"context"
	"time"

	"gjira/internal/adf"
	"gjira/internal/gerrit"
	"gjira/internal/jira"
	"gjira/internal/render"
	"gjira/internal/store"
)

// CommentInput contains parameters for the Comment operation.
type CommentInput struct {
	// URL is the change page to comment about.
	URL string
	// Key optionally overrides the extracted issue key.
	Key string
	// Template optionally overrides the stored comment template.
	Template string
	// DryRun renders the comment without posting it.
	DryRun bool
}

// CommentOutput contains the result of the Comment operation.
type CommentOutput struct {
	RunID    string                `json:"run_id"`
	IssueKey string                `json:"issue_key"`
	IssueURL string                `json:"issue_url"`
	Text     string                `json:"text"`
	Body     adf.Document          `json:"body"`
	Context  *gerrit.ChangeContext `json:"context,omitempty"`
	DryRun   bool                  `json:"dry_run,omitempty"`
}

// Comment extracts a change's context, renders the comment template, and
// posts the result to the issue as a rich-text comment. The change URL is
// auto-linked wherever it appears in the text. DryRun stops after rendering.
func Comment(ctx context.Context, env *Env, input CommentInput) (*CommentOutput, error) {
	runID := newRunID()

	if err := checkOrigin(input.URL); err != nil {
		return nil, env.finishRun(runID, "comment", input.Key, input.URL, err)
	}

	cctx, err := env.loadContext(ctx, env.NewSource(input.URL))
	if err != nil {
		return nil, env.finishRun(runID, "comment", input.Key, input.URL, err)
	}

	key, err := resolveKey(input.Key, cctx.IssueKey)
	if err != nil {
		return nil, env.finishRun(runID, "comment", input.Key, input.URL, err)
	}
	cctx.IssueKey = key

	tmpl, err := env.template(input.Template)
	if err != nil {
		return nil, env.finishRun(runID, "comment", key, input.URL, err)
	}

	text := render.Render(tmpl, render.VarsFromContext(cctx, time.Now()))
	body := adf.TextToDocument(text, cctx.CanonicalURL)

	output := &CommentOutput{
		RunID:    runID,
		IssueKey: key,
		IssueURL: jira.IssueURL(key),
		Text:     text,
		Body:     body,
		Context:  cctx,
		DryRun:   input.DryRun,
	}

	if input.DryRun {
		env.recordRun(runID, "comment", key, input.URL, "dry_run", "")
		return output, nil
	}

	creds, err := env.credentials()
	if err != nil {
		return nil, env.finishRun(runID, "comment", key, input.URL, err)
	}
	client, err := env.NewJira(creds)
	if err != nil {
		return nil, env.finishRun(runID, "comment", key, input.URL, err)
	}

	if err := client.AddComment(ctx, key, body); err != nil {
		return nil, env.finishRun(runID, "comment", key, input.URL, err)
	}

	env.finishRun(runID, "comment", key, input.URL, nil)
	return output, nil
}

// template picks the comment template: explicit input, then the stored
// setting, then the built-in default.
func (e *Env) template(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	stored, err := store.GetSetting(e.DB, store.KeyTemplate)
	if err != nil {
		return "", err
	}
	if stored != "" {
		return stored, nil
	}
	return render.DefaultTemplate, nil
}

package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Parameter names mirror the CLI flags so a tool call
// reads like the equivalent command.

var contextToolDef = mcp.NewTool("gerrit_context",
	mcp.WithDescription("Extract the context of a Gerrit change page: subject, Jira issue key, branch, owner, commit body, change number, and project. A missing issue key is reported as an empty field."),
	mcp.WithString("url",
		mcp.Required(),
		mcp.Description("Gerrit change page URL"),
	),
	mcp.WithString("key",
		mcp.Description("Override the extracted Jira issue key (e.g. TF-123)"),
	),
)

var issueToolDef = mcp.NewTool("jira_issue",
	mcp.WithDescription("Look up a Jira issue's summary, status, and assignee."),
	mcp.WithString("key",
		mcp.Required(),
		mcp.Description("Jira issue key (e.g. TF-123)"),
	),
)

var commentToolDef = mcp.NewTool("jira_comment",
	mcp.WithDescription("Render the comment template against a Gerrit change and post the result to the Jira issue as a rich-text comment. The change URL is auto-linked."),
	mcp.WithString("url",
		mcp.Required(),
		mcp.Description("Gerrit change page URL"),
	),
	mcp.WithString("key",
		mcp.Description("Override the extracted Jira issue key"),
	),
	mcp.WithString("template",
		mcp.Description("Override the comment template for this call"),
	),
	mcp.WithBoolean("dry_run",
		mcp.Description("Render the comment without posting it"),
	),
)

var linkToolDef = mcp.NewTool("jira_link",
	mcp.WithDescription("Attach a Gerrit change to a Jira issue as a remote link. Re-linking the same change updates the existing link."),
	mcp.WithString("url",
		mcp.Required(),
		mcp.Description("Gerrit change page URL"),
	),
	mcp.WithString("key",
		mcp.Description("Override the extracted Jira issue key"),
	),
)

var historyToolDef = mcp.NewTool("bridge_history",
	mcp.WithDescription("List recent bridge runs, newest first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of runs to return (default 20, max 100)"),
	),
)

var configSetToolDef = mcp.NewTool("bridge_config_set",
	mcp.WithDescription("Store a bridge setting: email, api_token, or comment_template."),
	mcp.WithString("key",
		mcp.Required(),
		mcp.Description("Setting name: email, api_token, or comment_template"),
	),
	mcp.WithString("value",
		mcp.Required(),
		mcp.Description("Setting value"),
	),
)

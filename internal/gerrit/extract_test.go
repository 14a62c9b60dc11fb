package gerrit

import (
	"strings"
	"testing"
)

const changeURL = "http://gerrit.thinkfree.com/c/web/office/+/4821/3"

func mustParse(t *testing.T, page string) *Node {
	t.Helper()
	doc, err := ParseString(page)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return doc
}

func TestExtract_FullShadowPage(t *testing.T) {
	doc := mustParse(t, shadowPage)

	ctx := Extract(doc, changeURL)

	if ctx.Subject != "Fix parser crash" {
		t.Errorf("Subject = %q, want %q", ctx.Subject, "Fix parser crash")
	}
	if ctx.IssueKey != "TF-77" {
		t.Errorf("IssueKey = %q, want TF-77", ctx.IssueKey)
	}
	if ctx.Branch != "main" {
		t.Errorf("Branch = %q, want main", ctx.Branch)
	}
	if ctx.Owner != "Jane Doe" {
		t.Errorf("Owner = %q, want Jane Doe", ctx.Owner)
	}
	if ctx.Body != "Handle empty tokens." {
		t.Errorf("Body = %q, want %q", ctx.Body, "Handle empty tokens.")
	}
	if ctx.ChangeID != "I0123456789abcdef0123456789abcdef01234567" {
		t.Errorf("ChangeID = %q", ctx.ChangeID)
	}
	if ctx.Project != "web/office" {
		t.Errorf("Project = %q, want web/office", ctx.Project)
	}
	if ctx.ChangeNumber != "4821" {
		t.Errorf("ChangeNumber = %q, want 4821", ctx.ChangeNumber)
	}
	if ctx.CanonicalURL != changeURL {
		t.Errorf("CanonicalURL = %q, want %q", ctx.CanonicalURL, changeURL)
	}
}

func TestExtract_SubjectFromTitleFallback(t *testing.T) {
	doc := mustParse(t, `<html><head><title>TF-9: Fix login · Gerrit Code Review</title></head><body></body></html>`)

	ctx := Extract(doc, "http://gerrit.thinkfree.com/c/web/+/1")

	if ctx.Subject != "Fix login" {
		t.Errorf("Subject = %q, want %q", ctx.Subject, "Fix login")
	}
	if ctx.IssueKey != "TF-9" {
		t.Errorf("IssueKey = %q, want TF-9", ctx.IssueKey)
	}
}

func TestExtract_NeverPanicsOnNilDoc(t *testing.T) {
	ctx := Extract(nil, "http://x/1")

	if ctx.CanonicalURL != "http://x/1" {
		t.Errorf("CanonicalURL = %q", ctx.CanonicalURL)
	}
	if ctx.IssueKey != "" || ctx.Subject != "" {
		t.Errorf("empty page should yield empty fields, got %+v", ctx)
	}
}

func TestExtract_AllFieldsDefaultOnEmptyPage(t *testing.T) {
	doc := mustParse(t, `<html><body></body></html>`)

	ctx := Extract(doc, "not-a-change-url")

	if ctx.Subject != "" || ctx.Branch != "" || ctx.Body != "" ||
		ctx.Owner != "" || ctx.ChangeID != "" || ctx.Project != "" ||
		ctx.ChangeNumber != "" || ctx.IssueKey != "" {
		t.Errorf("expected empty defaults, got %+v", ctx)
	}
}

func TestExtract_TagInSubjectWinsOverCommitMessage(t *testing.T) {
	doc := mustParse(t, `<html><head><title>x</title></head><body>
<div id="subject">jira: AAA-1 tweak styles</div>
<pre class="commitMessage">tweak styles

jira: BBB-2
</pre>
</body></html>`)

	ctx := Extract(doc, "http://x/1")

	if ctx.IssueKey != "AAA-1" {
		t.Errorf("IssueKey = %q, want AAA-1 (subject tag has priority)", ctx.IssueKey)
	}
}

func TestExtract_CommitTagWinsOverBareSubjectKey(t *testing.T) {
	doc := mustParse(t, `<html><head><title>x</title></head><body>
<div id="subject">CCC-3 tweak styles</div>
<pre class="commitMessage">tweak styles

jira: BBB-2
</pre>
</body></html>`)

	ctx := Extract(doc, "http://x/1")

	if ctx.IssueKey != "BBB-2" {
		t.Errorf("IssueKey = %q, want BBB-2 (tagged key beats bare key)", ctx.IssueKey)
	}
}

func TestExtract_TagIsCaseInsensitiveKeyUppercased(t *testing.T) {
	doc := mustParse(t, `<html><head><title>x</title></head><body>
<div id="subject">JIRA: tf-12 fix</div>
</body></html>`)

	ctx := Extract(doc, "http://x/1")

	if ctx.IssueKey != "TF-12" {
		t.Errorf("IssueKey = %q, want TF-12", ctx.IssueKey)
	}
}

func TestExtract_BroadScanFindsKeyInShadowOnlyText(t *testing.T) {
	doc := mustParse(t, `<html><head><title>review</title></head><body>
<x-el><template shadowrootmode="open"><p>relates to QQ-41</p></template></x-el>
</body></html>`)

	ctx := Extract(doc, "http://x/1")

	if ctx.IssueKey != "QQ-41" {
		t.Errorf("IssueKey = %q, want QQ-41 via shadow scan", ctx.IssueKey)
	}
}

func TestExtract_BareKeyScanIsCaseSensitive(t *testing.T) {
	doc := mustParse(t, `<html><head><title>review</title></head><body>
<p>encoded as utf-8 text</p>
</body></html>`)

	ctx := Extract(doc, "http://x/1")

	if ctx.IssueKey != "" {
		t.Errorf("IssueKey = %q, want empty (utf-8 is not a key)", ctx.IssueKey)
	}
}

func TestSubjectFromTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "brand suffix and key prefix",
			title: "TF-9: Fix login · Gerrit Code Review",
			want:  "Fix login",
		},
		{
			name:  "pipe separator",
			title: "Fix login | Gerrit",
			want:  "Fix login",
		},
		{
			name:  "no suffix",
			title: "Fix login",
			want:  "Fix login",
		},
		{
			name:  "key prefix only",
			title: "TF-123: tidy up",
			want:  "tidy up",
		},
		{
			name:  "empty",
			title: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := subjectFromTitle(tt.title); got != tt.want {
				t.Errorf("subjectFromTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestCleanBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "strips tag and change-id lines",
			body: "Fix login.\njira: TF-9\nChange-Id: I0123456789abcdef0123456789abcdef01234567",
			want: "Fix login.",
		},
		{
			name: "collapses excess blank lines",
			body: "one\n\n\n\ntwo",
			want: "one\n\ntwo",
		},
		{
			name: "trims surrounding whitespace",
			body: "\n\n  body text  \n\n",
			want: "body text",
		},
		{
			name: "keeps inline jira mention",
			body: "see jira: TF-9 for details",
			want: "see jira: TF-9 for details",
		},
		{
			name: "empty",
			body: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanBody(tt.body); got != tt.want {
				t.Errorf("cleanBody(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestStripFirstLine(t *testing.T) {
	if got := stripFirstLine("subject\nbody"); got != "body" {
		t.Errorf("stripFirstLine = %q, want body", got)
	}
	if got := stripFirstLine("only-line"); got != "" {
		t.Errorf("stripFirstLine single line = %q, want empty", got)
	}
	if got := stripFirstLine(""); got != "" {
		t.Errorf("stripFirstLine empty = %q, want empty", got)
	}
}

func TestParseChangePath(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		wantProject string
		wantNumber  string
	}{
		{
			name:        "standard change URL",
			url:         "http://gerrit.thinkfree.com/c/web/office/+/4821",
			wantProject: "web/office",
			wantNumber:  "4821",
		},
		{
			name:        "with patchset suffix",
			url:         "http://gerrit.thinkfree.com/c/tools/+/99/7",
			wantProject: "tools",
			wantNumber:  "99",
		},
		{
			name:        "unmatched",
			url:         "http://gerrit.thinkfree.com/q/status:open",
			wantProject: "",
			wantNumber:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, number := parseChangePath(tt.url)
			if project != tt.wantProject || number != tt.wantNumber {
				t.Errorf("parseChangePath(%q) = (%q, %q), want (%q, %q)",
					tt.url, project, number, tt.wantProject, tt.wantNumber)
			}
		})
	}
}

func TestParseChangeID(t *testing.T) {
	id := "I" + strings.Repeat("ab12", 10)
	msg := "subject\n\nChange-Id: " + id

	if got := parseChangeID(msg); got != id {
		t.Errorf("parseChangeID = %q, want %q", got, id)
	}
	if got := parseChangeID("no trailer here"); got != "" {
		t.Errorf("parseChangeID = %q, want empty", got)
	}
	if got := parseChangeID("Change-Id: Ishort"); got != "" {
		t.Errorf("parseChangeID short token = %q, want empty", got)
	}
}

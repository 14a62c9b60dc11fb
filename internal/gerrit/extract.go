package gerrit

import (
	"regexp"
	"strings"
)

// ChangeContext is the structured metadata recovered from one change page.
// Every field is always set; missing data is an empty string. IssueKey is
// empty when no key could be detected anywhere on the page.
type ChangeContext struct {
	IssueKey     string `json:"issue_key"`
	Subject      string `json:"subject"`
	CanonicalURL string `json:"canonical_url"`
	Branch       string `json:"branch"`
	Body         string `json:"body"`
	ChangeNumber string `json:"change_number"`
	Project      string `json:"project"`
	Owner        string `json:"owner"`
	ChangeID     string `json:"change_id"`
}

// Candidate selectors, newest page version first. The host page has shipped
// several DOM layouts; each list covers the ones seen in the wild.
var (
	subjectSelectors = []string{
		".header-title .headerSubject",
		"gr-change-view .headerSubject",
		"#subject",
		"h1.subject",
	}

	commitMessageSelectors = []string{
		"gr-editable-content .commitMessage",
		".commitMessage gr-formatted-text",
		".commitMessage",
		".commit-message pre",
		"pre.commit_message",
	}

	branchSelectors = []string{
		"gr-change-metadata .branch a",
		".branchName",
		"a[href*=branch:]",
	}

	ownerSelectors = []string{
		"gr-change-metadata .owner gr-account-label",
		".change-owner a",
		".owner .name",
	}

	// genericKeySelectors is the last-resort scan list: headings, commit
	// message containers, and page-level containers.
	genericKeySelectors = []string{
		"h1",
		"h2",
		".headerSubject",
		".commitMessage",
		"pre",
		"#app",
	}
)

// pageTextBudget bounds the broad full-page text scan.
const pageTextBudget = 60000

var (
	// trackerTagPattern matches an explicit "jira: KEY" label. The label is
	// case-insensitive; the captured key is uppercased before validation.
	trackerTagPattern = regexp.MustCompile(`(?i)\bjira\s*:\s*([A-Za-z][A-Za-z0-9]+-\d+)`)

	// bareKeyPattern matches a bare issue key. Deliberately case-sensitive:
	// prose like "utf-8" must not read as a key.
	bareKeyPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-\d+\b`)

	// trackerTagLine matches a whole commit-message line carrying the tag.
	trackerTagLine = regexp.MustCompile(`(?i)^\s*jira\s*:\s*\S+\s*$`)

	// changeIDPattern matches the Gerrit Change-Id trailer token.
	changeIDPattern = regexp.MustCompile(`Change-Id:\s*(I[0-9a-f]{40})`)

	// changeIDLine matches a whole Change-Id trailer line.
	changeIDLine = regexp.MustCompile(`^\s*Change-Id:\s*\S+\s*$`)

	// changePathPattern parses project and change number from the URL path:
	// /c/<project>/+/<number>[/...].
	changePathPattern = regexp.MustCompile(`/c/(.+?)/\+/(\d+)`)

	// titleBrandSuffix strips the host page's "separator + brand" title tail.
	titleBrandSuffix = regexp.MustCompile(`\s*[·|]\s*Gerrit.*$`)

	// titleKeyPrefix strips a leading "KEY:" identifier from the title.
	titleKeyPrefix = regexp.MustCompile(`^[A-Z][A-Z0-9]+-\d+\s*:\s*`)

	// excessBlankLines collapses 3+ consecutive newlines to a blank line.
	excessBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Extract produces a best-effort ChangeContext from a parsed change page and
// its navigation URL. It never fails: every field degrades to its empty
// default when the data cannot be located.
func Extract(doc *Node, pageURL string) *ChangeContext {
	ctx := &ChangeContext{CanonicalURL: pageURL}
	if doc == nil {
		return ctx
	}

	title := documentTitle(doc)
	ctx.Subject = extractSubject(doc, title)

	commitMessage := extractCommitMessage(doc)
	ctx.Body = cleanBody(stripFirstLine(commitMessage))
	ctx.ChangeID = parseChangeID(commitMessage)

	ctx.IssueKey = extractIssueKey(doc, ctx.Subject, title, commitMessage)

	if el, ok := doc.QueryFirst(branchSelectors); ok {
		ctx.Branch = firstLine(el.Text())
	}
	if el, ok := doc.QueryFirst(ownerSelectors); ok {
		ctx.Owner = firstLine(el.Text())
	}

	ctx.Project, ctx.ChangeNumber = parseChangePath(pageURL)

	return ctx
}

// extractSubject resolves the change title: first matching selector wins,
// otherwise it is derived from the document title by stripping the trailing
// brand suffix and a leading "KEY:" prefix. The result is never empty when
// the document has any title at all.
func extractSubject(doc *Node, title string) string {
	if el, ok := doc.QueryFirst(subjectSelectors); ok {
		return firstLine(el.Text())
	}
	return subjectFromTitle(title)
}

// subjectFromTitle derives the subject from a raw document title.
func subjectFromTitle(title string) string {
	s := titleBrandSuffix.ReplaceAllString(title, "")
	s = titleKeyPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractIssueKey resolves the issue key in priority order: tracker tag in
// the subject or title, tracker tag in the commit message, bare key in the
// subject or title, then the broad page scan. Subject wins over the commit
// message; see DESIGN.md for the rationale. Returns "" when nothing matches.
func extractIssueKey(doc *Node, subject, title, commitMessage string) string {
	headline := subject + "\n" + title

	if key := tagKey(headline); key != "" {
		return key
	}
	if key := tagKey(commitMessage); key != "" {
		return key
	}
	if key := bareKey(headline); key != "" {
		return key
	}
	return scanForKey(doc)
}

// scanForKey is the fallback broad scan: bounded full page text, then every
// open shadow root's text, then a fixed list of generic structural
// selectors.
func scanForKey(doc *Node) string {
	text := doc.PageText(pageTextBudget)
	if key := anyKey(text); key != "" {
		return key
	}
	for _, t := range doc.ShadowTexts() {
		if key := anyKey(t); key != "" {
			return key
		}
	}
	for _, sel := range genericKeySelectors {
		for _, el := range doc.QueryAll(sel) {
			if key := anyKey(el.Text()); key != "" {
				return key
			}
		}
	}
	return ""
}

// tagKey returns the uppercased key from an explicit tracker tag, or "".
func tagKey(text string) string {
	if m := trackerTagPattern.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// bareKey returns the first bare issue key in text, or "".
func bareKey(text string) string {
	return bareKeyPattern.FindString(text)
}

// anyKey prefers a tagged key over a bare one.
func anyKey(text string) string {
	if key := tagKey(text); key != "" {
		return key
	}
	return bareKey(text)
}

// extractCommitMessage returns the raw commit message text, or "".
func extractCommitMessage(doc *Node) string {
	if el, ok := doc.QueryFirst(commitMessageSelectors); ok {
		return el.Text()
	}
	return ""
}

// stripFirstLine removes the commit subject line from a commit message.
func stripFirstLine(msg string) string {
	if msg == "" {
		return ""
	}
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		return msg[idx+1:]
	}
	return ""
}

// cleanBody strips tracker-tag and Change-Id trailer lines from a commit
// body, collapses runs of 3+ newlines to 2, and trims the result.
func cleanBody(body string) string {
	if body == "" {
		return ""
	}
	lines := strings.Split(body, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if trackerTagLine.MatchString(line) || changeIDLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	out := strings.Join(kept, "\n")
	out = excessBlankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// parseChangeID returns the "I" + 40-hex Change-Id token from a commit
// message, or "".
func parseChangeID(msg string) string {
	if m := changeIDPattern.FindStringSubmatch(msg); m != nil {
		return m[1]
	}
	return ""
}

// parseChangePath parses the repository path and numeric change id from a
// change URL. Both are empty when the URL does not match the known pattern.
func parseChangePath(pageURL string) (project, number string) {
	m := changePathPattern.FindStringSubmatch(pageURL)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

// documentTitle returns the <title> text.
func documentTitle(doc *Node) string {
	if el := doc.Query("title"); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

// firstLine trims text to its first non-empty line. Element text on the host
// page often carries layout newlines.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

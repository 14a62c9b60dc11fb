// Package render substitutes named placeholders in a user-configurable
// comment template with values extracted from a Gerrit change.
package render

import (
	"regexp"
	"strings"
	"time"

	"gjira/internal/gerrit"
)

// DefaultTemplate is used when the user has not stored a custom template.
const DefaultTemplate = "{title}\n\n{body}\n\nGerrit: {url}"

// Vars is the fixed mapping fed into Render. Absent values are empty
// strings, never missing.
type Vars struct {
	Title    string
	Body     string
	Branch   string
	Number   string
	ChangeID string
	Project  string
	Owner    string
	Date     string
	URL      string
}

// placeholderPattern matches the recognized {name} placeholders only.
// Unrecognized brace tokens are left verbatim.
var placeholderPattern = regexp.MustCompile(`\{(title|body|branch|number|changeid|project|owner|date|url)\}`)

// blankRuns matches 3+ consecutive newlines (blank-line runs).
var blankRuns = regexp.MustCompile(`\n{3,}`)

// VarsFromContext builds the render variables from an extracted change
// context. The date is formatted "YYYY-MM-DD HH:MM" in local time.
func VarsFromContext(c *gerrit.ChangeContext, now time.Time) Vars {
	return Vars{
		Title:    c.Subject,
		Body:     c.Body,
		Branch:   c.Branch,
		Number:   c.ChangeNumber,
		ChangeID: c.ChangeID,
		Project:  c.Project,
		Owner:    c.Owner,
		Date:     now.Format("2006-01-02 15:04"),
		URL:      c.CanonicalURL,
	}
}

// Render substitutes every recognized placeholder in tmpl with its value,
// collapses runs of 3+ newlines to exactly 2, and trims surrounding
// whitespace. The title and URL are appended as fallback lines when
// non-empty and absent from the rendered output.
func Render(tmpl string, vars Vars) string {
	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		switch m {
		case "{title}":
			return vars.Title
		case "{body}":
			return vars.Body
		case "{branch}":
			return vars.Branch
		case "{number}":
			return vars.Number
		case "{changeid}":
			return vars.ChangeID
		case "{project}":
			return vars.Project
		case "{owner}":
			return vars.Owner
		case "{date}":
			return vars.Date
		case "{url}":
			return vars.URL
		}
		return m
	})

	out = collapse(out)

	if vars.Title != "" && !strings.Contains(out, vars.Title) {
		out = appendLine(out, vars.Title)
	}
	if vars.URL != "" && !strings.Contains(out, vars.URL) {
		out = appendLine(out, "Gerrit: "+vars.URL)
	}

	return out
}

// collapse normalizes blank-line runs and trims the result.
func collapse(s string) string {
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// appendLine adds a fallback paragraph to the rendered text.
func appendLine(s, line string) string {
	if s == "" {
		return line
	}
	return s + "\n\n" + line
}

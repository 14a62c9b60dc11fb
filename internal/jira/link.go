package jira

import (
	"gjira/internal/gerrit"
)

// BuildRemoteLink builds the remote-link payload for a change. The GlobalID
// prefers the numeric change number and falls back to the Change-Id token,
// so re-linking the same change updates the existing link. With neither
// identifier available the link is created without a GlobalID and is not
// idempotent.
func BuildRemoteLink(c *gerrit.ChangeContext) RemoteLink {
	title := c.Subject
	if title == "" {
		title = "Gerrit change"
	}

	var globalID string
	switch {
	case c.ChangeNumber != "":
		globalID = "gerrit-change-" + c.ChangeNumber
	case c.ChangeID != "":
		globalID = "gerrit-change-" + c.ChangeID
	}

	return RemoteLink{
		GlobalID: globalID,
		Object: LinkObject{
			URL:   c.CanonicalURL,
			Title: title,
		},
	}
}

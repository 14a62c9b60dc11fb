package store

import (
	"database/sql"
	"time"

	"gjira/internal/errors"
)

// Setting keys used by the bridge. Anything else is accepted and stored;
// these are the keys other packages read.
const (
	KeyEmail    = "email"
	KeyAPIToken = "api_token"
	KeyTemplate = "comment_template"
)

// Run is one recorded bridge action.
type Run struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	IssueKey  string `json:"issue_key,omitempty"`
	URL       string `json:"url,omitempty"`
	Outcome   string `json:"outcome"`
	Code      string `json:"code,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// SetSetting stores or replaces a setting value.
func SetSetting(db *sql.DB, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.Exec(query, key, value, time.Now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetSetting returns a setting value, or "" if the key is not set.
func GetSetting(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return value, nil
}

// UnsetSetting removes a setting. Removing an absent key is not an error.
func UnsetSetting(db *sql.DB, key string) error {
	if _, err := db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// AllSettings returns every stored setting keyed by name.
func AllSettings(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.NewInternal(err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return settings, nil
}

// RecordRun inserts a run-history row.
func RecordRun(db *sql.DB, r *Run) error {
	query := `
		INSERT INTO runs (id, action, issue_key, url, outcome, code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		r.ID, r.Action, toNullString(r.IssueKey), toNullString(r.URL),
		r.Outcome, toNullString(r.Code), r.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// defaults to 20.
func ListRuns(db *sql.DB, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, action, issue_key, url, outcome, code, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		var issueKey, url, code sql.NullString
		if err := rows.Scan(&r.ID, &r.Action, &issueKey, &url, &r.Outcome, &code, &r.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		r.IssueKey = issueKey.String
		r.URL = url.String
		r.Code = code.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return runs, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

package store

import (
	"database/sql"
	"testing"
	"time"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettings_RoundTrip(t *testing.T) {
	db := testDB(t)

	if err := SetSetting(db, KeyEmail, "dev@thinkfree.com"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	got, err := GetSetting(db, KeyEmail)
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if got != "dev@thinkfree.com" {
		t.Errorf("value = %q, want %q", got, "dev@thinkfree.com")
	}
}

func TestSettings_Replace(t *testing.T) {
	db := testDB(t)

	if err := SetSetting(db, KeyAPIToken, "old"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if err := SetSetting(db, KeyAPIToken, "new"); err != nil {
		t.Fatalf("SetSetting() replace error = %v", err)
	}

	got, err := GetSetting(db, KeyAPIToken)
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if got != "new" {
		t.Errorf("value = %q, want replaced %q", got, "new")
	}
}

func TestSettings_MissingKeyIsEmpty(t *testing.T) {
	db := testDB(t)

	got, err := GetSetting(db, "nonexistent")
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if got != "" {
		t.Errorf("value = %q, want empty for missing key", got)
	}
}

func TestSettings_Unset(t *testing.T) {
	db := testDB(t)

	if err := SetSetting(db, KeyTemplate, "{title}"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if err := UnsetSetting(db, KeyTemplate); err != nil {
		t.Fatalf("UnsetSetting() error = %v", err)
	}
	got, _ := GetSetting(db, KeyTemplate)
	if got != "" {
		t.Errorf("value = %q, want empty after unset", got)
	}

	// Unsetting again is not an error.
	if err := UnsetSetting(db, KeyTemplate); err != nil {
		t.Errorf("UnsetSetting() on absent key error = %v", err)
	}
}

func TestAllSettings(t *testing.T) {
	db := testDB(t)

	SetSetting(db, KeyEmail, "dev@thinkfree.com")
	SetSetting(db, KeyTemplate, "{title}\n{url}")

	all, err := AllSettings(db)
	if err != nil {
		t.Fatalf("AllSettings() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("AllSettings() = %v, want 2 entries", all)
	}
	if all[KeyEmail] != "dev@thinkfree.com" {
		t.Errorf("email = %q", all[KeyEmail])
	}
}

func TestRuns_RecordAndList(t *testing.T) {
	db := testDB(t)

	base := time.Now().Unix()
	runs := []*Run{
		{ID: "01A", Action: "comment", IssueKey: "TF-1", URL: "http://g/1", Outcome: "ok", CreatedAt: base},
		{ID: "01B", Action: "link", IssueKey: "TF-2", URL: "http://g/2", Outcome: "error", Code: "NOT_FOUND", CreatedAt: base + 1},
		{ID: "01C", Action: "context", URL: "http://g/3", Outcome: "ok", CreatedAt: base + 2},
	}
	for _, r := range runs {
		if err := RecordRun(db, r); err != nil {
			t.Fatalf("RecordRun(%s) error = %v", r.ID, err)
		}
	}

	got, err := ListRuns(db, 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListRuns() returned %d runs, want 3", len(got))
	}
	// Newest first.
	if got[0].ID != "01C" || got[2].ID != "01A" {
		t.Errorf("order = %s,%s,%s, want newest first", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[1].Code != "NOT_FOUND" {
		t.Errorf("Code = %q, want NOT_FOUND", got[1].Code)
	}
	if got[2].IssueKey != "TF-1" {
		t.Errorf("IssueKey = %q, want TF-1", got[2].IssueKey)
	}
	// Nullable columns survive empty.
	if got[0].IssueKey != "" || got[0].Code != "" {
		t.Errorf("empty fields came back as %+v", got[0])
	}
}

func TestRuns_ListLimit(t *testing.T) {
	db := testDB(t)

	for i := 0; i < 5; i++ {
		RecordRun(db, &Run{ID: string(rune('A' + i)), Action: "comment", Outcome: "ok", CreatedAt: int64(i)})
	}

	got, err := ListRuns(db, 2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListRuns(2) returned %d runs", len(got))
	}
}

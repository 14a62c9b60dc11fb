package gerrit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeSource serves a scripted sequence of page renderings, mimicking a page
// that fills in asynchronously.
type fakeSource struct {
	url   string
	pages []string
	errs  []error
	calls int
}

func (f *fakeSource) URL() string { return f.url }

func (f *fakeSource) Load(ctx context.Context) (*Node, error) {
	i := f.calls
	f.calls++
	if i >= len(f.pages) {
		i = len(f.pages) - 1
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return ParseString(f.pages[i])
}

func TestExtractWithRetry_ImmediateKey(t *testing.T) {
	src := &fakeSource{
		url:   "http://gerrit.thinkfree.com/c/web/+/1",
		pages: []string{`<html><head><title>TF-5: quick fix · Gerrit Code Review</title></head><body></body></html>`},
	}

	ctx, err := ExtractWithRetry(context.Background(), src, time.Second)
	if err != nil {
		t.Fatalf("ExtractWithRetry failed: %v", err)
	}
	if ctx.IssueKey != "TF-5" {
		t.Errorf("IssueKey = %q, want TF-5", ctx.IssueKey)
	}
	if src.calls != 1 {
		t.Errorf("loads = %d, want 1 (no polling after success)", src.calls)
	}
}

func TestExtractWithRetry_KeyAppearsOnLaterRender(t *testing.T) {
	empty := `<html><head><title>loading</title></head><body></body></html>`
	full := `<html><head><title>x</title></head><body><div id="subject">jira: TF-8 done</div></body></html>`
	src := &fakeSource{
		url:   "http://gerrit.thinkfree.com/c/web/+/2",
		pages: []string{empty, empty, full},
	}

	ctx, err := ExtractWithRetry(context.Background(), src, 2*time.Second)
	if err != nil {
		t.Fatalf("ExtractWithRetry failed: %v", err)
	}
	if ctx.IssueKey != "TF-8" {
		t.Errorf("IssueKey = %q, want TF-8", ctx.IssueKey)
	}
	if src.calls < 3 {
		t.Errorf("loads = %d, want at least 3", src.calls)
	}
}

func TestExtractWithRetry_TimeoutReturnsBestEffort(t *testing.T) {
	page := `<html><head><title>Fix spacing · Gerrit Code Review</title></head><body></body></html>`
	src := &fakeSource{
		url:   "http://gerrit.thinkfree.com/c/web/+/3",
		pages: []string{page},
	}

	start := time.Now()
	ctx, err := ExtractWithRetry(context.Background(), src, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("ExtractWithRetry failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("retry ran %v, deadline not honored", elapsed)
	}
	if ctx.IssueKey != "" {
		t.Errorf("IssueKey = %q, want empty best-effort", ctx.IssueKey)
	}
	if ctx.Subject != "Fix spacing" {
		t.Errorf("Subject = %q, want Fix spacing", ctx.Subject)
	}
}

func TestExtractWithRetry_AllLoadsFail(t *testing.T) {
	loadErr := errors.New("connection refused")
	src := &fakeSource{
		url:   "http://gerrit.thinkfree.com/c/web/+/4",
		pages: []string{""},
		errs:  []error{loadErr},
	}

	_, err := ExtractWithRetry(context.Background(), src, 400*time.Millisecond)
	if err == nil {
		t.Fatal("expected error when every load fails")
	}
}

func TestExtractWithRetry_LoadFailureThenSuccess(t *testing.T) {
	full := `<html><head><title>x</title></head><body><div id="subject">jira: TF-1 ok</div></body></html>`
	src := &fakeSource{
		url:   "http://gerrit.thinkfree.com/c/web/+/5",
		pages: []string{"", full},
		errs:  []error{errors.New("flaky"), nil},
	}

	ctx, err := ExtractWithRetry(context.Background(), src, 2*time.Second)
	if err != nil {
		t.Fatalf("ExtractWithRetry failed: %v", err)
	}
	if ctx.IssueKey != "TF-1" {
		t.Errorf("IssueKey = %q, want TF-1", ctx.IssueKey)
	}
}

func TestExtractWithRetry_ContextCancel(t *testing.T) {
	empty := `<html><body></body></html>`
	src := &fakeSource{
		url:   "http://gerrit.thinkfree.com/c/web/+/6",
		pages: []string{empty},
	}

	cctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	ctx, err := ExtractWithRetry(cctx, src, 10*time.Second)
	if err != nil {
		t.Fatalf("cancel should still return best effort, got %v", err)
	}
	if ctx == nil {
		t.Fatal("nil context result")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("cancellation not honored promptly")
	}
}

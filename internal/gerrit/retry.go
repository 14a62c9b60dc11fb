package gerrit

import (
	"context"
	"time"
)

// Source provides the current rendering of the change page. The host page
// renders asynchronously, so consecutive loads may return progressively more
// complete documents.
type Source interface {
	// URL returns the page's navigation URL.
	URL() string
	// Load fetches and parses the current page document.
	Load(ctx context.Context) (*Node, error)
}

// Retry timing. The deadline matches the window the host page needs to
// finish rendering after navigation.
const (
	DefaultRetryTimeout = 1800 * time.Millisecond
	retryPollInterval   = 300 * time.Millisecond
)

// ExtractWithRetry repeatedly loads and extracts the page until a result
// carries an issue key or the timeout elapses, then returns the best
// available result. A load failure does not abort the loop; the last
// successful extraction (or, failing everything, the last load error) wins.
// All timers are released before returning.
func ExtractWithRetry(ctx context.Context, src Source, timeout time.Duration) (*ChangeContext, error) {
	if timeout <= 0 {
		timeout = DefaultRetryTimeout
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	poll := time.NewTicker(retryPollInterval)
	defer poll.Stop()

	var best *ChangeContext
	var lastErr error

	for {
		doc, err := src.Load(ctx)
		if err != nil {
			lastErr = err
		} else {
			best = Extract(doc, src.URL())
			if best.IssueKey != "" {
				return best, nil
			}
		}

		select {
		case <-ctx.Done():
			return finish(best, src.URL(), ctx.Err())
		case <-deadline.C:
			return finish(best, src.URL(), lastErr)
		case <-poll.C:
		}
	}
}

// finish returns the best-effort result: a keyless context is still a valid
// outcome, but a run with no successful load at all surfaces its error.
func finish(best *ChangeContext, url string, err error) (*ChangeContext, error) {
	if best != nil {
		return best, nil
	}
	if err == nil {
		return &ChangeContext{CanonicalURL: url}, nil
	}
	return nil, err
}

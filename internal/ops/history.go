package ops

import (
	"gjira/internal/store"
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	// Limit caps the number of runs returned. Non-positive means the
	// default; values above MaxHistoryLimit are clamped.
	Limit int
}

// HistoryOutput contains the result of the History operation.
type HistoryOutput struct {
	Runs  []*store.Run `json:"runs"`
	Count int          `json:"count"`
}

// History lists recent bridge runs, newest first.
func History(env *Env, input HistoryInput) (*HistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	runs, err := store.ListRuns(env.DB, limit)
	if err != nil {
		return nil, err
	}

	return &HistoryOutput{
		Runs:  runs,
		Count: len(runs),
	}, nil
}

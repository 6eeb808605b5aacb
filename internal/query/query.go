package query

import (
	"context"
	"time"
)

type Request struct {
	SQL string
	// RowLimit caps the number of materialized rows. Zero means unlimited.
	RowLimit int
}

// Result is a rectangular table: every row holds len(Columns) values and a
// nil value is a NULL.
type Result struct {
	Columns   []string
	Rows      [][]any
	Truncated bool
	Duration  time.Duration
}

func (r Result) RowCount() int {
	return len(r.Rows)
}

type Engine interface {
	Execute(ctx context.Context, request Request) (Result, error)
}

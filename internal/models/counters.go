package models

import (
	"context"
	"fmt"

	"consultdesk/internal/db"
)

// Display id sequences.
const (
	CounterStudent     = "student"
	CounterApplication = "application"
	CounterVisa        = "visa"
)

// NextDisplayID atomically increments the named counter and formats it,
// e.g. NextDisplayID(ctx, q, CounterStudent, "STU", 4) -> "STU-0007".
// The upsert takes a row lock, so concurrent callers never see the same value.
func NextDisplayID(ctx context.Context, q db.Querier, counter, prefix string, width int) (string, error) {
	var value int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO id_counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = id_counters.value + 1
		RETURNING value
	`, counter).Scan(&value)
	if err != nil {
		return "", Classify("next display id", err)
	}
	return FormatDisplayID(prefix, width, value), nil
}

func FormatDisplayID(prefix string, width int, value int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, value)
}

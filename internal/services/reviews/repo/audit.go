package repo

import (
	"context"
	"errors"

	"reviewguard/internal/core/ratelimit"
	"reviewguard/internal/platform/store"
)

// AuditTable is the clickhouse table receiving one row per verdict
const AuditTable = "review_verdicts"

const auditDDL = `
CREATE TABLE IF NOT EXISTS review_verdicts (
    id            UUID,
    review_id     String,
    created_at    DateTime64(3, 'UTC'),
    day           Date,
    target_id     String,
    submitter_id  String,
    contact_id    String,
    accepted      Bool,
    reasons       Array(LowCardinality(String)),
    warnings      Array(LowCardinality(String)),
    stage         LowCardinality(String),
    tokens        UInt32,
    repetition    Float64,
    similarity    Float64,
    model_fake    Float64,
    model_scored  Bool
) ENGINE = MergeTree
PARTITION BY toYYYYMM(created_at)
ORDER BY (target_id, created_at)
`

// Auditor writes verdict rows to clickhouse
type Auditor struct {
	ch store.Clickhouse
}

// NewAuditor returns nil when ch is nil so callers can skip auditing
func NewAuditor(ch store.Clickhouse) *Auditor {
	if ch == nil {
		return nil
	}
	return &Auditor{ch: ch}
}

// EnsureTable creates the audit table when the client supports DDL
func (a *Auditor) EnsureTable(ctx context.Context) error {
	x, ok := a.ch.(interface {
		Exec(ctx context.Context, sql string, args ...any) error
	})
	if !ok {
		return errors.New("clickhouse client cannot run ddl")
	}
	return x.Exec(ctx, auditDDL)
}

// Write sends rows as one batch in table column order
func (a *Auditor) Write(ctx context.Context, xs []VerdictRow) error {
	if len(xs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(xs))
	for _, x := range xs {
		rows = append(rows, auditRow(x))
	}
	return a.ch.Insert(ctx, AuditTable, rows)
}

func auditRow(x VerdictRow) []any {
	v := x.Verdict
	day := v.Day
	if day == "" {
		day = ratelimit.DayOf(x.CreatedAt)
	}
	return []any{
		x.ID,
		x.ReviewID,
		x.CreatedAt.UTC(),
		day.Time(),
		x.TargetID,
		x.SubmitterID,
		x.ContactID,
		v.Accepted,
		reasonStrings(v.Reasons),
		nonNil(v.Warnings),
		string(v.Reached),
		uint32(v.Tokens),
		v.Scores.Repetition,
		v.Scores.Similarity,
		v.Scores.ModelFake,
		v.Scores.ModelScored,
	}
}

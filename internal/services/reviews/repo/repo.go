// Package repo provides postgres and clickhouse access for reviews
package repo

import (
	"context"
	"time"

	"reviewguard/internal/core/engine"
	"reviewguard/internal/modkit/repokit"
	perr "reviewguard/internal/platform/errors"
	"reviewguard/internal/platform/store"
)

// Repo is the persistence surface for reviews
type Repo interface {
	InsertReview(ctx context.Context, r ReviewRow) error
	InsertVerdict(ctx context.Context, v VerdictRow) error
	GetReview(ctx context.Context, id string) (ReviewRow, error)
	RecentByTarget(ctx context.Context, perTarget int) ([]RecentRow, error)
}

// ReviewRow is one accepted review
type ReviewRow struct {
	ID          string
	TargetID    string
	SubmitterID string
	ContactID   string
	TextRaw     string
	TextNorm    string
	Scores      engine.Scores
	CreatedAt   time.Time
}

// VerdictRow is the audit record written for every decided submission
type VerdictRow struct {
	ID          string
	ReviewID    string // empty when rejected
	TargetID    string
	SubmitterID string
	ContactID   string
	Verdict     engine.Verdict
	CreatedAt   time.Time
}

// RecentRow is a stored canonical text used to warm the similarity index
type RecentRow struct {
	TargetID string
	TextNorm string
}

type (
	// PG binds the repo to a Queryer
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the postgres repo
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) InsertReview(ctx context.Context, x ReviewRow) error {
	const sql = `
insert into reviews
  (id, target_id, submitter_id, contact_id, text_raw, text_norm,
   repetition, similarity, model_fake, model_scored, created_at)
values ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`
	err := store.ExecOne(ctx, r.q, sql,
		x.ID, x.TargetID, x.SubmitterID, x.ContactID, x.TextRaw, x.TextNorm,
		x.Scores.Repetition, x.Scores.Similarity, x.Scores.ModelFake, x.Scores.ModelScored, x.CreatedAt,
	)
	return mapDB(err, "insert review")
}

func (r *queries) InsertVerdict(ctx context.Context, x VerdictRow) error {
	const sql = `
insert into review_verdicts
  (id, review_id, target_id, submitter_id, contact_id, accepted, reasons, warnings,
   stage, tokens, repetition, similarity, model_fake, model_scored, created_at)
values ($1::uuid, nullif($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`
	v := x.Verdict
	err := store.ExecOne(ctx, r.q, sql,
		x.ID, x.ReviewID, x.TargetID, x.SubmitterID, x.ContactID, v.Accepted,
		reasonStrings(v.Reasons), nonNil(v.Warnings), string(v.Reached), v.Tokens,
		v.Scores.Repetition, v.Scores.Similarity, v.Scores.ModelFake, v.Scores.ModelScored, x.CreatedAt,
	)
	return mapDB(err, "insert verdict")
}

func (r *queries) GetReview(ctx context.Context, id string) (ReviewRow, error) {
	const sql = `
select id::text, target_id, submitter_id, contact_id, text_raw, text_norm,
       repetition, similarity, model_fake, model_scored, created_at
from reviews
where id = $1::uuid
`
	row, err := store.One(ctx, r.q, scanReview, sql, id)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return ReviewRow{}, perr.NotFoundf("review %s not found", id)
		}
		return ReviewRow{}, mapDB(err, "get review")
	}
	return row, nil
}

// RecentByTarget returns up to perTarget most recent canonical texts per
// target, oldest first so replaying them keeps the newest in the window
func (r *queries) RecentByTarget(ctx context.Context, perTarget int) ([]RecentRow, error) {
	const sql = `
select target_id, text_norm
from (
  select target_id, text_norm, created_at,
         row_number() over (partition by target_id order by created_at desc) as rn
  from reviews
) ranked
where rn <= $1
order by target_id, created_at asc
`
	rows, err := store.Many(ctx, r.q, func(row store.Row) (RecentRow, error) {
		var x RecentRow
		err := row.Scan(&x.TargetID, &x.TextNorm)
		return x, err
	}, sql, perTarget)
	return rows, mapDB(err, "recent reviews")
}

func scanReview(row store.Row) (ReviewRow, error) {
	var x ReviewRow
	err := row.Scan(
		&x.ID, &x.TargetID, &x.SubmitterID, &x.ContactID, &x.TextRaw, &x.TextNorm,
		&x.Scores.Repetition, &x.Scores.Similarity, &x.Scores.ModelFake, &x.Scores.ModelScored, &x.CreatedAt,
	)
	return x, err
}

func reasonStrings(rs []engine.Reason) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

// mapDB converts postgres failures into coded errors, leaving coded errors alone
func mapDB(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := perr.As(err); ok {
		return err
	}
	return perr.FromPostgres(err, op)
}

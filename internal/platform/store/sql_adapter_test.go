package store

import (
	"context"
	"errors"
	"testing"

	"reviewguard/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type recTracer struct{ events []pg.QueryEvent }

func (r *recTracer) OnQuery(_ context.Context, ev pg.QueryEvent) { r.events = append(r.events, ev) }

type pgxStubRow struct{ err error }

func (r pgxStubRow) Scan(...any) error { return r.err }

// pgxStub implements pgxQuerier; Query always fails so no pgx.Rows fake is needed
type pgxStub struct {
	rowErr error
}

func (s pgxStub) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (s pgxStub) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("query failed")
}

func (s pgxStub) QueryRow(context.Context, string, ...any) pgx.Row { return pgxStubRow{err: s.rowErr} }

func TestTraced_EmitsPerStatement(t *testing.T) {
	ctx := context.Background()
	tr := &recTracer{}
	q := traced{q: pgxStub{}, tracer: tr, slowUS: 0}

	tag, err := q.Exec(ctx, "INSERT INTO reviews VALUES ($1)", "r-1")
	if err != nil || tag.RowsAffected() != 1 {
		t.Fatalf("Exec = %v, %v", tag, err)
	}
	if _, err := q.Query(ctx, "SELECT 1"); err == nil {
		t.Fatalf("expected query error")
	}
	if err := q.QueryRow(ctx, "SELECT 2").Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(tr.events) != 3 {
		t.Fatalf("events = %d, want 3", len(tr.events))
	}
	if tr.events[1].Err == nil {
		t.Fatalf("query error not traced")
	}
	if !tr.events[0].Slow {
		t.Fatalf("slowUS=0 should flag every statement slow")
	}
}

func TestTraced_NoRowsIsNotAnError(t *testing.T) {
	tr := &recTracer{}
	q := traced{q: pgxStub{rowErr: pgx.ErrNoRows}, tracer: tr, slowUS: -1}

	err := q.QueryRow(context.Background(), "SELECT").Scan()
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("err = %v, want ErrNoRows", err)
	}
	if len(tr.events) != 1 || tr.events[0].Err != nil || tr.events[0].Slow {
		t.Fatalf("unexpected trace %+v", tr.events)
	}
}

func TestTraced_NilTracer(t *testing.T) {
	q := traced{q: pgxStub{}}
	if _, err := q.Exec(context.Background(), "SELECT"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
}

package repo

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"reviewguard/internal/core/ratelimit"
	"reviewguard/internal/modkit/repokit"
)

const day = ratelimit.Day("2025-09-03")

func TestGate_CeilingsAndDimension(t *testing.T) {
	db := newCounterDB()
	g := NewGate(db, ratelimit.Limits{PerSubmitter: 3, PerContact: 2})
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		d, err := g.CheckAndIncrement(ctx, "u1", "c1", day)
		if err != nil || !d.Allowed || d.Submitter != i || d.Contact != i {
			t.Fatalf("call %d: %+v %v", i, d, err)
		}
	}

	d, err := g.CheckAndIncrement(ctx, "u1", "c1", day)
	if err != nil || d.Allowed || d.Dimension != ratelimit.KindContact || d.Reason() != "RateLimited:contact" {
		t.Fatalf("third call: %+v %v", d, err)
	}
	if n, _ := g.Count(ctx, ratelimit.KindSubmitter, "u1", day); n != 2 {
		t.Fatalf("denied call must not increment, submitter count = %d", n)
	}

	// a fresh contact still hits the submitter ceiling at 3
	if d, _ := g.CheckAndIncrement(ctx, "u1", "c2", day); !d.Allowed {
		t.Fatalf("fourth call: %+v", d)
	}
	d, _ = g.CheckAndIncrement(ctx, "u1", "c3", day)
	if d.Allowed || d.Dimension != ratelimit.KindSubmitter {
		t.Fatalf("fifth call: %+v", d)
	}

	// next day starts from zero
	if d, _ := g.CheckAndIncrement(ctx, "u1", "c1", day.Next()); !d.Allowed || d.Submitter != 1 {
		t.Fatalf("next day: %+v", d)
	}
}

func TestGate_LocksInKindOrder(t *testing.T) {
	db := newCounterDB()
	g := NewGate(db, ratelimit.DefaultLimits())
	if _, err := g.CheckAndIncrement(context.Background(), "u", "c", day); err != nil {
		t.Fatal(err)
	}
	if len(db.stmts) != 3 {
		t.Fatalf("statements = %d", len(db.stmts))
	}
	lock := db.stmts[1]
	if !strings.Contains(lock, "order by kind") || !strings.Contains(lock, "for update") {
		t.Fatalf("lock statement = %q", lock)
	}
}

func TestGate_EmptyIdentity(t *testing.T) {
	g := NewGate(newCounterDB(), ratelimit.DefaultLimits())
	if _, err := g.CheckAndIncrement(context.Background(), "", "c", day); !errors.Is(err, ratelimit.ErrEmptyIdentity) {
		t.Fatalf("err = %v", err)
	}
}

func TestGate_RetriesSerializationFailures(t *testing.T) {
	db := newCounterDB()
	db.failTx, db.txErr = 2, &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	g := NewGate(db, ratelimit.DefaultLimits())

	d, err := g.CheckAndIncrement(context.Background(), "u", "c", day)
	if err != nil || !d.Allowed {
		t.Fatalf("d=%+v err=%v", d, err)
	}
	if db.txs != 3 {
		t.Fatalf("transactions = %d, want 3", db.txs)
	}
}

func TestGate_DoesNotRetryOtherErrors(t *testing.T) {
	db := newCounterDB()
	db.failTx, db.txErr = 5, &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
	g := NewGate(db, ratelimit.DefaultLimits())

	if _, err := g.CheckAndIncrement(context.Background(), "u", "c", day); err == nil {
		t.Fatal("expected error")
	}
	if db.txs != 1 {
		t.Fatalf("transactions = %d, want 1", db.txs)
	}
}

func TestGate_ConcurrentNeverOvershoots(t *testing.T) {
	db := newCounterDB()
	g := NewGate(db, ratelimit.Limits{PerSubmitter: 5, PerContact: 5})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := g.CheckAndIncrement(context.Background(), "u", "c", day)
			if err == nil && d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 5 {
		t.Fatalf("allowed = %d, want 5", allowed)
	}
}

func TestGate_Sweep(t *testing.T) {
	db := newCounterDB()
	g := NewGate(db, ratelimit.DefaultLimits())
	ctx := context.Background()
	_, _ = g.CheckAndIncrement(ctx, "u", "c", "2025-09-01")
	_, _ = g.CheckAndIncrement(ctx, "u", "c", day)

	n, err := g.Sweep(ctx, "2025-09-02")
	if err != nil || n != 2 {
		t.Fatalf("swept %d %v", n, err)
	}
	if got, _ := g.Count(ctx, ratelimit.KindContact, "c", day); got != 1 {
		t.Fatalf("today's counter = %d", got)
	}
}

func TestLockTimeoutHook(t *testing.T) {
	db := newCounterDB()
	hooked := repokit.WithBeginHooks(db, LockTimeout(1500*time.Millisecond))
	g := NewGate(hooked, ratelimit.DefaultLimits())

	if _, err := g.CheckAndIncrement(context.Background(), "u", "c", day); err != nil {
		t.Fatal(err)
	}
	if db.stmts[0] != "SET LOCAL lock_timeout = '1500ms'" {
		t.Fatalf("first statement = %q", db.stmts[0])
	}

	db.stmts = nil
	if err := LockTimeout(0)(context.Background(), db); err != nil || len(db.stmts) != 0 {
		t.Fatalf("zero timeout should be a no-op: %v %v", err, db.stmts)
	}
}

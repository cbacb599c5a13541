package repo

import (
	"context"
	"fmt"
	"time"

	"reviewguard/internal/core/ratelimit"
	"reviewguard/internal/modkit/repokit"
	perr "reviewguard/internal/platform/errors"
)

// Gate is a ratelimit.Gate backed by review_counters. Both counter rows are
// locked in kind order inside one transaction so concurrent replicas never
// overshoot a ceiling
type Gate struct {
	db      repokit.TxRunner
	limits  ratelimit.Limits
	retries int
}

var (
	_ ratelimit.Gate    = (*Gate)(nil)
	_ ratelimit.Counter = (*Gate)(nil)
)

// NewGate builds a postgres gate enforcing l
func NewGate(db repokit.TxRunner, l ratelimit.Limits) *Gate {
	if db == nil {
		panic("reviews.Gate requires a non nil TxRunner")
	}
	return &Gate{db: db, limits: l, retries: 3}
}

// Limits returns the enforced ceilings
func (g *Gate) Limits() ratelimit.Limits { return g.limits }

// CheckAndIncrement implements ratelimit.Gate
func (g *Gate) CheckAndIncrement(ctx context.Context, submitter, contact string, day ratelimit.Day) (ratelimit.Decision, error) {
	if submitter == "" || contact == "" {
		return ratelimit.Decision{Day: day}, ratelimit.ErrEmptyIdentity
	}

	var (
		d   ratelimit.Decision
		err error
	)
	for attempt := 0; attempt <= g.retries; attempt++ {
		err = g.db.Tx(ctx, func(q repokit.Queryer) error {
			var e error
			d, e = g.bump(ctx, q, submitter, contact, day)
			return e
		})
		if err == nil || !perr.IsRetryable(err) {
			break
		}
		select {
		case <-ctx.Done():
			return d, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 20 * time.Millisecond):
		}
	}
	if err != nil {
		return ratelimit.Decision{Day: day}, perr.FromPostgres(err, "rate counters")
	}
	return d, nil
}

func (g *Gate) bump(ctx context.Context, q repokit.Queryer, submitter, contact string, day ratelimit.Day) (ratelimit.Decision, error) {
	at := day.Time()

	const seed = `
insert into review_counters (kind, identity, day, count)
values ('contact', $2, $3, 0), ('submitter', $1, $3, 0)
on conflict (kind, identity, day) do nothing
`
	if _, err := q.Exec(ctx, seed, submitter, contact, at); err != nil {
		return ratelimit.Decision{}, err
	}

	const lock = `
select kind, count
from review_counters
where day = $3
  and ((kind = 'submitter' and identity = $1) or (kind = 'contact' and identity = $2))
order by kind
for update
`
	rows, err := q.Query(ctx, lock, submitter, contact, at)
	if err != nil {
		return ratelimit.Decision{}, err
	}
	var sub, con int
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			rows.Close()
			return ratelimit.Decision{}, err
		}
		if ratelimit.Kind(kind) == ratelimit.KindSubmitter {
			sub = n
		} else {
			con = n
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ratelimit.Decision{}, err
	}

	d := ratelimit.Decide(g.limits, sub, con, day)
	if !d.Allowed {
		return d, nil
	}

	const inc = `
update review_counters
set count = count + 1
where day = $3
  and ((kind = 'submitter' and identity = $1) or (kind = 'contact' and identity = $2))
`
	if _, err := q.Exec(ctx, inc, submitter, contact, at); err != nil {
		return ratelimit.Decision{}, err
	}
	return d, nil
}

// Count implements ratelimit.Counter
func (g *Gate) Count(ctx context.Context, kind ratelimit.Kind, identity string, day ratelimit.Day) (int, error) {
	const sql = `
select coalesce(max(count), 0)
from review_counters
where kind = $1 and identity = $2 and day = $3
`
	var n int
	if err := g.db.QueryRow(ctx, sql, string(kind), identity, day.Time()).Scan(&n); err != nil {
		return 0, perr.FromPostgres(err, "read counter")
	}
	return n, nil
}

// Sweep deletes counters older than since
func (g *Gate) Sweep(ctx context.Context, since ratelimit.Day) (int64, error) {
	tag, err := g.db.Exec(ctx, `delete from review_counters where day < $1`, since.Time())
	if err != nil {
		return 0, perr.FromPostgres(err, "sweep counters")
	}
	return tag.RowsAffected(), nil
}

// LockTimeout bounds how long a counter transaction waits on row locks
func LockTimeout(d time.Duration) repokit.BeginHook {
	return func(ctx context.Context, q repokit.Queryer) error {
		if d <= 0 {
			return nil
		}
		_, err := q.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", d.Milliseconds()))
		return mapDB(err, "set lock timeout")
	}
}

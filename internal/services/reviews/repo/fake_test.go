package repo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"reviewguard/internal/modkit/repokit"
)

type tag int64

func (t tag) String() string      { return fmt.Sprintf("OK %d", int64(t)) }
func (t tag) RowsAffected() int64 { return int64(t) }

type fakeRows struct {
	data [][]any
	i    int
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.data) }
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     {}
func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *int:
			*p = row[i].(int)
		default:
			return fmt.Errorf("unsupported scan dest %T", d)
		}
	}
	return nil
}

type fakeRow struct{ rows *fakeRows }

func (r fakeRow) Scan(dest ...any) error {
	if !r.rows.Next() {
		return fmt.Errorf("no rows")
	}
	return r.rows.Scan(dest...)
}

// counterDB is an in-memory stand-in for review_counters
type counterDB struct {
	mu     sync.Mutex
	counts map[string]int
	stmts  []string
	txs    int

	// failTx makes the first n transactions fail with err
	failTx int
	txErr  error
}

func newCounterDB() *counterDB { return &counterDB{counts: map[string]int{}} }

func ckey(kind, id string, day any) string {
	return kind + "|" + id + "|" + day.(time.Time).Format("2006-01-02")
}

func (f *counterDB) Exec(_ context.Context, sql string, args ...any) (repokit.CommandTag, error) {
	f.stmts = append(f.stmts, strings.TrimSpace(sql))
	switch {
	case strings.Contains(sql, "insert into review_counters"):
		for _, k := range []string{ckey("submitter", args[0].(string), args[2]), ckey("contact", args[1].(string), args[2])} {
			if _, ok := f.counts[k]; !ok {
				f.counts[k] = 0
			}
		}
		return tag(2), nil
	case strings.Contains(sql, "update review_counters"):
		f.counts[ckey("submitter", args[0].(string), args[2])]++
		f.counts[ckey("contact", args[1].(string), args[2])]++
		return tag(2), nil
	case strings.Contains(sql, "delete from review_counters"):
		n := 0
		cut := args[0].(time.Time).Format("2006-01-02")
		for k := range f.counts {
			if k[strings.LastIndex(k, "|")+1:] < cut {
				delete(f.counts, k)
				n++
			}
		}
		return tag(n), nil
	}
	return tag(0), nil
}

func (f *counterDB) Query(_ context.Context, sql string, args ...any) (repokit.Rows, error) {
	f.stmts = append(f.stmts, strings.TrimSpace(sql))
	return &fakeRows{data: [][]any{
		{"contact", f.counts[ckey("contact", args[1].(string), args[2])]},
		{"submitter", f.counts[ckey("submitter", args[0].(string), args[2])]},
	}}, nil
}

func (f *counterDB) QueryRow(_ context.Context, _ string, args ...any) repokit.Row {
	n := f.counts[ckey(args[0].(string), args[1].(string), args[2])]
	return fakeRow{rows: &fakeRows{data: [][]any{{n}}}}
}

func (f *counterDB) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs++
	if f.failTx > 0 {
		f.failTx--
		return f.txErr
	}
	return fn(f)
}

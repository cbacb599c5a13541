// Package repokit holds the seams repositories are written against
package repokit

import (
	"context"

	"reviewguard/internal/platform/store"
)

type (
	// Queryer is the read and write surface a repo binds to
	Queryer = store.RowQuerier
	// TxRunner runs fn inside a transaction
	TxRunner   = store.TxRunner
	Rows       = store.Rows
	Row        = store.Row
	CommandTag = store.CommandTag
)

// CH narrows the store to its ClickHouse seam for audit writers
func CH(_ context.Context, db store.Clickhouse) store.Clickhouse { return db }

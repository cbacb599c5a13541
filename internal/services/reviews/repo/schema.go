package repo

import (
	"context"
	_ "embed"

	"reviewguard/internal/modkit/repokit"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the postgres DDL for the reviews tables
func Schema() string { return schemaSQL }

// EnsureSchema applies the idempotent DDL
func EnsureSchema(ctx context.Context, db repokit.TxRunner) error {
	return db.Tx(ctx, func(q repokit.Queryer) error {
		_, err := q.Exec(ctx, schemaSQL)
		return err
	})
}

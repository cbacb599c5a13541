package modkit

import (
	"reviewguard/internal/modkit/repokit"
	"reviewguard/internal/platform/config"
	"reviewguard/internal/platform/store"
)

// Deps are the shared dependencies handed to every module.
// PG and CH are nil when the backend is disabled
type Deps struct {
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

package repository

import (
	"context"
	"database/sql"
)

type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type SQLTxManager struct {
	db       *sql.DB
	settings Settings
}

func NewSQLTxManager(db *sql.DB, settings Settings) *SQLTxManager {
	return &SQLTxManager{db: db, settings: settings}
}

func (m *SQLTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	tx, err := m.db.BeginTx(ctx, m.settings.Dialect.txOptions())
	if err != nil {
		return err
	}

	repos := NewRepositories(tx, m.settings)

	if err := fn(ctx, repos); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}

	return tx.Commit()
}

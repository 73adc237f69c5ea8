package repos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// KVRepo stores whole JSON documents under string keys. A Put replaces the previous
// value in a single statement, so readers never see a partial document.
type KVRepo struct{ db *sqlx.DB }

func NewKVRepo(db *sqlx.DB) *KVRepo { return &KVRepo{db: db} }

func (r *KVRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v string
	err := r.db.GetContext(ctx, &v, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "kv get %s", key)
	}
	return []byte(v), true, nil
}

func (r *KVRepo) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv(key, value, updated_at)
		VALUES(?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, string(value))
	return errors.Wrapf(err, "kv put %s", key)
}

func (r *KVRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return errors.Wrapf(err, "kv delete %s", key)
}

// Keys lists stored keys with the given prefix.
func (r *KVRepo) Keys(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	err := r.db.SelectContext(ctx, &out, `SELECT key FROM kv WHERE key LIKE ? || '%' ORDER BY key`, prefix)
	return out, errors.Wrap(err, "kv keys")
}

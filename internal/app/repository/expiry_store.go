package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExpiryStore performs the bulk status transition for expired links.
type ExpiryStore interface {
	DemoteExpired(ctx context.Context, now time.Time) (int64, error)
}

type expiryStore struct {
	pool *pgxpool.Pool
}

// NewExpiryStore returns a pgx-backed ExpiryStore. The sweep runs as a single
// raw UPDATE so the whole batch rides on one statement's atomicity.
func NewExpiryStore(pool *pgxpool.Pool) ExpiryStore {
	return &expiryStore{pool: pool}
}

func (s *expiryStore) DemoteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE links SET status = 'Inactive' WHERE expires_at <= $1 AND status = 'Active'`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

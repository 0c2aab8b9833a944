package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhk7784/pungro-payment-server/internal/model"
)

type StoreRepository struct {
	pool *pgxpool.Pool
}

func NewStoreRepository(pool *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{pool: pool}
}

// ListAll returns every store with its submission channel, ordered by id.
func (r *StoreRepository) ListAll(ctx context.Context) ([]model.Store, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, channel_id FROM stores ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []model.Store
	for rows.Next() {
		var s model.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.ChannelID); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

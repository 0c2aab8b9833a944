package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhk7784/pungro-payment-server/internal/model"
)

var ErrVendorNotFound = errors.New("vendor not found")

type VendorRepository struct {
	pool *pgxpool.Pool
}

func NewVendorRepository(pool *pgxpool.Pool) *VendorRepository {
	return &VendorRepository{pool: pool}
}

// SearchByName returns vendors whose name contains the fragment,
// case-insensitively, ordered by id so ties break deterministically.
func (r *VendorRepository) SearchByName(ctx context.Context, fragment string) ([]model.Vendor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name FROM vendors
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY id
	`, fragment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []model.Vendor
	for rows.Next() {
		var v model.Vendor
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

func (r *VendorRepository) GetByID(ctx context.Context, id int64) (*model.Vendor, error) {
	v := &model.Vendor{}
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM vendors WHERE id = $1`, id).Scan(&v.ID, &v.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

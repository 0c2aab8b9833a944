package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhk7784/pungro-payment-server/internal/model"
)

var ErrRequestNotFound = errors.New("payment request not found")

type PaymentRequestRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRequestRepository(pool *pgxpool.Pool) *PaymentRequestRepository {
	return &PaymentRequestRepository{pool: pool}
}

const requestColumns = `id, store_id, vendor_id, requester_name, amount, category, description,
	status, origin_channel_id, origin_message_ts, approval_message_ts,
	processed_by, processed_at, created_at`

// Create assigns an id, persists the request as pending and fills in the
// generated timestamps. A single INSERT so concurrent handlers can never
// observe a half-written row.
func (r *PaymentRequestRepository) Create(ctx context.Context, req *model.PaymentRequest) (*model.PaymentRequest, error) {
	req.ID = uuid.NewString()
	req.Status = model.StatusPending
	err := r.pool.QueryRow(ctx, `
		INSERT INTO payment_requests (
			id, store_id, vendor_id, requester_name, amount, category,
			description, status, origin_channel_id, origin_message_ts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`,
		req.ID, req.StoreID, req.VendorID, req.RequesterName, req.Amount,
		req.Category, req.Description, req.Status, req.OriginChannelID, req.OriginMessageTS,
	).Scan(&req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert payment request: %w", err)
	}
	return req, nil
}

// AttachApprovalMessage records the posted approval card's message id so the
// card can be edited in place later.
func (r *PaymentRequestRepository) AttachApprovalMessage(ctx context.Context, id, messageTS string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payment_requests SET approval_message_ts = $2 WHERE id = $1`,
		id, messageTS,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// Decide transitions a pending request to its terminal state and stamps the
// decider. The conditional WHERE makes the transition atomic: when two
// decisions race, only the first one writes. The second caller gets the
// already-decided record back with applied=false.
func (r *PaymentRequestRepository) Decide(ctx context.Context, id string, outcome model.RequestStatus, decidedBy string) (*model.PaymentRequest, bool, error) {
	req := &model.PaymentRequest{}
	err := r.pool.QueryRow(ctx, `
		UPDATE payment_requests
		SET status = $2, processed_by = $3, processed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+requestColumns+`
	`, id, outcome, decidedBy).Scan(scanTargets(req)...)
	if err == nil {
		return req, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("decide payment request: %w", err)
	}

	// Already decided (or unknown id): return the recorded outcome unchanged.
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PaymentRequestRepository) GetByID(ctx context.Context, id string) (*model.PaymentRequest, error) {
	req := &model.PaymentRequest{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM payment_requests WHERE id = $1`,
		id,
	).Scan(scanTargets(req)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func scanTargets(req *model.PaymentRequest) []any {
	return []any{
		&req.ID, &req.StoreID, &req.VendorID, &req.RequesterName, &req.Amount,
		&req.Category, &req.Description, &req.Status, &req.OriginChannelID,
		&req.OriginMessageTS, &req.ApprovalMessageTS,
		&req.ProcessedBy, &req.ProcessedAt, &req.CreatedAt,
	}
}

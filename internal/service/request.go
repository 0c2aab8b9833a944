package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jhk7784/pungro-payment-server/internal/model"
	"github.com/jhk7784/pungro-payment-server/internal/parser"
)

var (
	ErrNotRecognized  = errors.New("text is not a payment request")
	ErrAmountTooSmall = errors.New("amount below the minimum")
	ErrInvalidOutcome = errors.New("invalid decision outcome")
)

// RequestStore is the persistence capability the service depends on.
type RequestStore interface {
	Create(ctx context.Context, req *model.PaymentRequest) (*model.PaymentRequest, error)
	AttachApprovalMessage(ctx context.Context, id, messageTS string) error
	Decide(ctx context.Context, id string, outcome model.RequestStatus, decidedBy string) (*model.PaymentRequest, bool, error)
}

// SubmitInput carries one inbound payment request through the pipeline.
type SubmitInput struct {
	Store           model.Store
	RequesterName   string
	Text            string
	OriginChannelID string
	// OriginMessageTS is empty when the request came from a slash command,
	// which has no message to thread from.
	OriginMessageTS string
}

// SubmitResult pairs the persisted request with the vendor the resolver
// picked, so callers can render the card without a second read.
type SubmitResult struct {
	Request *model.PaymentRequest
	Vendor  *model.Vendor
}

// RequestService owns the parse → validate → resolve → persist pipeline and
// the approve/reject state machine.
type RequestService struct {
	store     RequestStore
	resolver  *VendorResolver
	minAmount int64
	log       *logrus.Logger
}

func NewRequestService(store RequestStore, resolver *VendorResolver, minAmount int64, log *logrus.Logger) *RequestService {
	return &RequestService{store: store, resolver: resolver, minAmount: minAmount, log: log}
}

// Submit parses the text, enforces the amount floor, resolves the vendor and
// persists a pending request. ErrNotRecognized and ErrAmountTooSmall are the
// caller's cue for user-facing guidance; any other error aborted persistence
// and nothing was created.
func (s *RequestService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	parsed, ok := parser.Parse(in.Text)
	if !ok {
		return nil, ErrNotRecognized
	}
	if parsed.Amount < s.minAmount {
		return nil, fmt.Errorf("%w: %d < %d", ErrAmountTooSmall, parsed.Amount, s.minAmount)
	}

	vendor := s.resolver.Resolve(ctx, parsed.VendorName)

	req := &model.PaymentRequest{
		StoreID:         in.Store.ID,
		RequesterName:   in.RequesterName,
		Amount:          parsed.Amount,
		Category:        parsed.Category,
		Description:     parsed.Description,
		OriginChannelID: in.OriginChannelID,
	}
	if vendor != nil {
		req.VendorID = &vendor.ID
	}
	if in.OriginMessageTS != "" {
		ts := in.OriginMessageTS
		req.OriginMessageTS = &ts
	}

	created, err := s.store.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": created.ID,
		"store_id":   created.StoreID,
		"amount":     created.Amount,
		"category":   created.Category,
	}).Info("payment request created")

	return &SubmitResult{Request: created, Vendor: vendor}, nil
}

// AttachApprovalMessage links the posted card to the record. Best-effort:
// the request already exists and the card was already posted, so the caller
// only logs a failure here.
func (s *RequestService) AttachApprovalMessage(ctx context.Context, id, messageTS string) error {
	return s.store.AttachApprovalMessage(ctx, id, messageTS)
}

// Decide applies an approve/reject outcome. The second return is false when
// the request had already been decided; the returned record then carries the
// original decision unchanged.
func (s *RequestService) Decide(ctx context.Context, id string, outcome model.RequestStatus, decidedBy string) (*model.PaymentRequest, bool, error) {
	if outcome != model.StatusApproved && outcome != model.StatusRejected {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}

	req, applied, err := s.store.Decide(ctx, id, outcome, decidedBy)
	if err != nil {
		return nil, false, err
	}
	if !applied {
		s.log.WithFields(logrus.Fields{"request_id": id, "status": req.Status}).
			Info("decision ignored, request already decided")
	}
	return req, applied, nil
}

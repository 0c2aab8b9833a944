package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhk7784/pungro-payment-server/internal/model"
)

type fakeRequestStore struct {
	records     map[string]*model.PaymentRequest
	createErr   error
	decideErr   error
	createCalls int
	nextID      int
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{records: map[string]*model.PaymentRequest{}}
}

func (f *fakeRequestStore) Create(ctx context.Context, req *model.PaymentRequest) (*model.PaymentRequest, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	req.ID = fmt.Sprintf("req-%d", f.nextID)
	req.Status = model.StatusPending
	req.CreatedAt = time.Now()
	cp := *req
	f.records[req.ID] = &cp
	return req, nil
}

func (f *fakeRequestStore) AttachApprovalMessage(ctx context.Context, id, messageTS string) error {
	r, ok := f.records[id]
	if !ok {
		return errors.New("payment request not found")
	}
	r.ApprovalMessageTS = &messageTS
	return nil
}

func (f *fakeRequestStore) Decide(ctx context.Context, id string, outcome model.RequestStatus, decidedBy string) (*model.PaymentRequest, bool, error) {
	if f.decideErr != nil {
		return nil, false, f.decideErr
	}
	r, ok := f.records[id]
	if !ok {
		return nil, false, errors.New("payment request not found")
	}
	if r.Status != model.StatusPending {
		cp := *r
		return &cp, false, nil
	}
	r.Status = outcome
	by := decidedBy
	now := time.Now()
	r.ProcessedBy = &by
	r.ProcessedAt = &now
	cp := *r
	return &cp, true, nil
}

func newRequestService(store *fakeRequestStore, lookup *fakeVendorLookup) *RequestService {
	if lookup == nil {
		lookup = &fakeVendorLookup{}
	}
	resolver := NewVendorResolver(lookup, quietLogger())
	return NewRequestService(store, resolver, 1000, quietLogger())
}

var testStore = model.Store{ID: 3, Name: "강남점", ChannelID: "ch-3"}

func TestSubmitUnrecognizedText(t *testing.T) {
	store := newFakeRequestStore()
	svc := newRequestService(store, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{
		Store: testStore, RequesterName: "minji", Text: "hello there", OriginChannelID: "ch-3",
	})
	assert.ErrorIs(t, err, ErrNotRecognized)
	assert.Zero(t, store.createCalls, "no record may be created for unrecognized text")
}

func TestSubmitAmountBelowFloor(t *testing.T) {
	store := newFakeRequestStore()
	svc := newRequestService(store, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{
		Store: testStore, RequesterName: "minji", Text: "500 misc pens", OriginChannelID: "ch-3",
	})
	assert.ErrorIs(t, err, ErrAmountTooSmall)
	assert.Zero(t, store.createCalls, "no record may be created below the floor")
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	store := newFakeRequestStore()
	lookup := &fakeVendorLookup{vendors: []model.Vendor{{ID: 11, Name: "coupang"}}}
	svc := newRequestService(store, lookup)

	result, err := svc.Submit(context.Background(), SubmitInput{
		Store:           testStore,
		RequesterName:   "minji",
		Text:            "결제요청 150,000원 coupang 사무용품 구매",
		OriginChannelID: "ch-3",
		OriginMessageTS: "msg-42",
	})
	require.NoError(t, err)

	req := result.Request
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, model.StatusPending, req.Status)
	assert.Equal(t, testStore.ID, req.StoreID)
	assert.Equal(t, int64(150000), req.Amount)
	assert.Equal(t, "minji", req.RequesterName)
	require.NotNil(t, req.VendorID)
	assert.Equal(t, int64(11), *req.VendorID)
	require.NotNil(t, req.OriginMessageTS)
	assert.Equal(t, "msg-42", *req.OriginMessageTS)
	require.NotNil(t, result.Vendor)
	assert.Equal(t, "coupang", result.Vendor.Name)
}

func TestSubmitWithoutOriginMessage(t *testing.T) {
	store := newFakeRequestStore()
	svc := newRequestService(store, nil)

	result, err := svc.Submit(context.Background(), SubmitInput{
		Store: testStore, RequesterName: "minji", Text: "150000 groceries vegetable purchase", OriginChannelID: "ch-3",
	})
	require.NoError(t, err)
	assert.Nil(t, result.Request.OriginMessageTS)
	assert.Nil(t, result.Request.VendorID)
	assert.Nil(t, result.Vendor)
}

func TestSubmitPersistenceFailureAborts(t *testing.T) {
	store := newFakeRequestStore()
	store.createErr = errors.New("insert failed")
	svc := newRequestService(store, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{
		Store: testStore, RequesterName: "minji", Text: "150000 groceries vegetable purchase", OriginChannelID: "ch-3",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotRecognized)
	assert.NotErrorIs(t, err, ErrAmountTooSmall)
}

func TestDecideRoundTrip(t *testing.T) {
	store := newFakeRequestStore()
	svc := newRequestService(store, nil)

	result, err := svc.Submit(context.Background(), SubmitInput{
		Store: testStore, RequesterName: "minji", Text: "150000 groceries vegetable purchase", OriginChannelID: "ch-3",
	})
	require.NoError(t, err)

	decided, applied, err := svc.Decide(context.Background(), result.Request.ID, model.StatusApproved, "alice")
	require.NoError(t, err)
	assert.True(t, applied)

	assert.Equal(t, result.Request.StoreID, decided.StoreID)
	assert.Equal(t, result.Request.Amount, decided.Amount)
	assert.Equal(t, result.Request.Category, decided.Category)
	assert.Equal(t, result.Request.Description, decided.Description)
	assert.Equal(t, model.StatusApproved, decided.Status)
	require.NotNil(t, decided.ProcessedBy)
	assert.Equal(t, "alice", *decided.ProcessedBy)
	assert.NotNil(t, decided.ProcessedAt)
}

func TestDecideTwiceIsNoOp(t *testing.T) {
	store := newFakeRequestStore()
	svc := newRequestService(store, nil)

	result, err := svc.Submit(context.Background(), SubmitInput{
		Store: testStore, RequesterName: "minji", Text: "150000 groceries vegetable purchase", OriginChannelID: "ch-3",
	})
	require.NoError(t, err)

	_, applied, err := svc.Decide(context.Background(), result.Request.ID, model.StatusApproved, "alice")
	require.NoError(t, err)
	require.True(t, applied)

	second, applied, err := svc.Decide(context.Background(), result.Request.ID, model.StatusRejected, "bob")
	require.NoError(t, err)
	assert.False(t, applied, "second decision must be a no-op")
	assert.Equal(t, model.StatusApproved, second.Status)
	require.NotNil(t, second.ProcessedBy)
	assert.Equal(t, "alice", *second.ProcessedBy, "original decision must not be overwritten")
}

func TestDecideInvalidOutcome(t *testing.T) {
	svc := newRequestService(newFakeRequestStore(), nil)

	_, _, err := svc.Decide(context.Background(), "req-1", model.StatusPending, "alice")
	assert.ErrorIs(t, err, ErrInvalidOutcome)
}

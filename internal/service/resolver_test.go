package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhk7784/pungro-payment-server/internal/model"
)

type fakeVendorLookup struct {
	vendors []model.Vendor
	err     error
	calls   int
}

func (f *fakeVendorLookup) SearchByName(ctx context.Context, fragment string) ([]model.Vendor, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vendors, nil
}

func quietLogger() *logrus.Logger {
	logg := logrus.New()
	logg.SetOutput(io.Discard)
	return logg
}

func TestResolveEmptyNameSkipsLookup(t *testing.T) {
	lookup := &fakeVendorLookup{vendors: []model.Vendor{{ID: 1, Name: "coupang"}}}
	r := NewVendorResolver(lookup, quietLogger())

	assert.Nil(t, r.Resolve(context.Background(), ""))
	assert.Nil(t, r.Resolve(context.Background(), "   "))
	assert.Zero(t, lookup.calls, "empty name must not hit the lookup")
}

func TestResolveLookupErrorDegradesToNil(t *testing.T) {
	lookup := &fakeVendorLookup{err: errors.New("connection refused")}
	r := NewVendorResolver(lookup, quietLogger())

	assert.Nil(t, r.Resolve(context.Background(), "coupang"))
	assert.Equal(t, 1, lookup.calls)
}

func TestResolveNoMatch(t *testing.T) {
	lookup := &fakeVendorLookup{}
	r := NewVendorResolver(lookup, quietLogger())

	assert.Nil(t, r.Resolve(context.Background(), "nobody"))
}

func TestResolveSingleMatch(t *testing.T) {
	lookup := &fakeVendorLookup{vendors: []model.Vendor{{ID: 7, Name: "Coupang Korea"}}}
	r := NewVendorResolver(lookup, quietLogger())

	v := r.Resolve(context.Background(), "coupang")
	require.NotNil(t, v)
	assert.Equal(t, int64(7), v.ID)
}

func TestResolveExactMatchWins(t *testing.T) {
	lookup := &fakeVendorLookup{vendors: []model.Vendor{
		{ID: 1, Name: "coupang fresh"},
		{ID: 2, Name: "Coupang"},
		{ID: 3, Name: "coupang eats"},
	}}
	r := NewVendorResolver(lookup, quietLogger())

	v := r.Resolve(context.Background(), "coupang")
	require.NotNil(t, v)
	assert.Equal(t, int64(2), v.ID)
}

func TestResolveFuzzyTieBreakPrefersClosestName(t *testing.T) {
	lookup := &fakeVendorLookup{vendors: []model.Vendor{
		{ID: 1, Name: "supermarket coupang wholesale"},
		{ID: 2, Name: "coupang kr"},
	}}
	r := NewVendorResolver(lookup, quietLogger())

	v := r.Resolve(context.Background(), "coupang")
	require.NotNil(t, v)
	assert.Equal(t, int64(2), v.ID)
}

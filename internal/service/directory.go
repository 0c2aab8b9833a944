package service

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/jhk7784/pungro-payment-server/internal/model"
)

// StoreLister is the slice of the data store the directory needs.
type StoreLister interface {
	ListAll(ctx context.Context) ([]model.Store, error)
}

// StoreDirectory holds the channel→store mapping as an immutable snapshot.
// Refresh replaces the snapshot wholesale, never partially, so concurrent
// readers always see a consistent mapping. It is injected as a dependency
// instead of living in a package-level variable.
type StoreDirectory struct {
	stores   StoreLister
	log      *logrus.Logger
	snapshot atomic.Pointer[directorySnapshot]
}

type directorySnapshot struct {
	version   int64
	byChannel map[string]model.Store
	byID      map[int64]model.Store
}

func NewStoreDirectory(stores StoreLister, log *logrus.Logger) *StoreDirectory {
	d := &StoreDirectory{stores: stores, log: log}
	d.snapshot.Store(&directorySnapshot{
		byChannel: map[string]model.Store{},
		byID:      map[int64]model.Store{},
	})
	return d
}

// Refresh loads all stores and swaps in a new snapshot. On failure the
// previous snapshot stays in place.
func (d *StoreDirectory) Refresh(ctx context.Context) error {
	stores, err := d.stores.ListAll(ctx)
	if err != nil {
		return err
	}

	prev := d.snapshot.Load()
	next := &directorySnapshot{
		version:   prev.version + 1,
		byChannel: make(map[string]model.Store, len(stores)),
		byID:      make(map[int64]model.Store, len(stores)),
	}
	for _, s := range stores {
		next.byChannel[s.ChannelID] = s
		next.byID[s.ID] = s
	}
	d.snapshot.Store(next)

	d.log.WithFields(logrus.Fields{"stores": len(stores), "version": next.version}).
		Info("store directory refreshed")
	return nil
}

// ByChannel resolves the store mapped to a submission channel.
func (d *StoreDirectory) ByChannel(channelID string) (model.Store, bool) {
	s, ok := d.snapshot.Load().byChannel[channelID]
	return s, ok
}

// ByID resolves a store by primary key.
func (d *StoreDirectory) ByID(id int64) (model.Store, bool) {
	s, ok := d.snapshot.Load().byID[id]
	return s, ok
}

// Version identifies the currently loaded snapshot, starting at 0 for the
// empty boot snapshot.
func (d *StoreDirectory) Version() int64 {
	return d.snapshot.Load().version
}

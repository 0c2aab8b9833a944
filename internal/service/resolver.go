package service

import (
	"context"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"

	"github.com/jhk7784/pungro-payment-server/internal/model"
)

// VendorLookup is the slice of the data store the resolver needs.
type VendorLookup interface {
	SearchByName(ctx context.Context, fragment string) ([]model.Vendor, error)
}

// VendorResolver maps a free-text vendor name to a known vendor, best-effort.
// A lookup outage degrades to an unassigned vendor rather than blocking
// request creation.
type VendorResolver struct {
	vendors VendorLookup
	log     *logrus.Logger
}

func NewVendorResolver(vendors VendorLookup, log *logrus.Logger) *VendorResolver {
	return &VendorResolver{vendors: vendors, log: log}
}

// Resolve returns the best-matching vendor or nil. An empty name returns nil
// immediately without touching the lookup. Tie-break among multiple substring
// hits: exact case-insensitive match wins, otherwise fuzzy rank, otherwise
// the lowest id.
func (r *VendorResolver) Resolve(ctx context.Context, name string) *model.Vendor {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	vendors, err := r.vendors.SearchByName(ctx, name)
	if err != nil {
		r.log.WithError(err).WithField("vendor", name).
			Warn("vendor lookup failed, leaving vendor unassigned")
		return nil
	}
	if len(vendors) == 0 {
		return nil
	}

	for i := range vendors {
		if strings.EqualFold(vendors[i].Name, name) {
			return &vendors[i]
		}
	}

	names := make([]string, len(vendors))
	for i, v := range vendors {
		names[i] = v.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(name, names)
	if len(ranks) == 0 {
		return &vendors[0]
	}
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Distance < ranks[j].Distance })
	return &vendors[ranks[0].OriginalIndex]
}

package recyclebin

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"assetdesk/internal/core/apperror"
	"assetdesk/internal/core/retention"
	"assetdesk/pkg/logger"
)

// productFetchLimit caps concurrent product lookups per load.
const productFetchLimit = 4

// Aggregator loads and enriches the deleted collections for a session.
type Aggregator struct {
	gateway    Gateway
	windowDays int
}

// NewAggregator creates an aggregator over the collaborator gateway.
func NewAggregator(gateway Gateway, windowDays int) *Aggregator {
	if windowDays <= 0 {
		windowDays = retention.DefaultWindowDays
	}
	return &Aggregator{gateway: gateway, windowDays: windowDays}
}

// Load fetches the deleted collections and their lookup state into the
// session. Total failure of the deleted-items call surfaces a user-visible
// load error and leaves both collections empty; lookup and product failures
// degrade individual fields only. There is no automatic retry, a failed load
// recovers on the next Load call.
func (a *Aggregator) Load(ctx context.Context, s *Session) error {
	gen := s.beginReload()

	items, err := a.gateway.DeletedItems(ctx)
	if err != nil {
		s.mu.Lock()
		if s.stillCurrentLocked(gen) {
			s.loadFailed = true
			s.loadError = "failed to load deleted items"
		}
		s.mu.Unlock()
		return apperror.NewUpstream("inventory", apperror.UpstreamDetail(err), err).
			WithDetail("operation", "deleted_items")
	}

	lookups := a.loadLookups(ctx)

	all := make([]DeletedRecord, 0, len(items.Assets)+len(items.Components))
	all = append(all, items.Assets...)
	all = append(all, items.Components...)

	s.mu.Lock()
	missing := s.products.MissingFrom(all)
	s.mu.Unlock()

	fetched := a.fetchProducts(ctx, missing)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stillCurrentLocked(gen) {
		// The view reloaded or went away while we were fetching.
		logger.Debug(ctx, "dropping stale load result", "session_id", s.ID)
		return nil
	}
	s.assets = items.Assets
	s.components = items.Components
	s.lookups = lookups
	// Replace rather than mutate: Rows hands the current cache to a resolver
	// that keeps reading it after the lock is released.
	s.products = s.products.Merged(fetched)
	return nil
}

// loadLookups fetches the dropdown dimensions. The two collaborator calls run
// concurrently and independently: a failing dimension is logged and left
// empty, it never aborts the others.
func (a *Aggregator) loadLookups(ctx context.Context) Lookups {
	lookups := NewLookups()
	var mu sync.Mutex

	var g errgroup.Group
	g.Go(func() error {
		dd, err := a.gateway.Dropdowns(ctx, DropdownProduct)
		if err != nil {
			logger.Warn(ctx, "dropdown load failed", "kind", string(DropdownProduct), "error", err)
			return nil
		}
		mu.Lock()
		fillLookup(lookups.Categories, dd.Categories)
		fillLookup(lookups.Manufacturers, dd.Manufacturers)
		fillLookup(lookups.Suppliers, dd.Suppliers)
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		dd, err := a.gateway.Dropdowns(ctx, DropdownLocation)
		if err != nil {
			logger.Warn(ctx, "dropdown load failed", "kind", string(DropdownLocation), "error", err)
			return nil
		}
		mu.Lock()
		fillLookup(lookups.Locations, dd.Locations)
		mu.Unlock()
		return nil
	})
	_ = g.Wait()

	return lookups
}

func fillLookup(m LookupMap, options []Option) {
	for _, opt := range options {
		m.Add(opt.ID, opt.Name)
	}
}

// fetchProducts resolves missing product ids concurrently. Per-id failures
// are swallowed: the affected record's fields simply stay unresolved.
func (a *Aggregator) fetchProducts(ctx context.Context, ids []int64) map[int64]Product {
	if len(ids) == 0 {
		return nil
	}

	fetched := make(map[int64]Product, len(ids))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(productFetchLimit)
	for _, id := range ids {
		g.Go(func() error {
			p, err := a.gateway.Product(ctx, id)
			if err != nil {
				logger.Warn(ctx, "product lookup failed", "product_id", id, "error", err)
				return nil
			}
			mu.Lock()
			fetched[id] = *p
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return fetched
}

// Row is an enriched, display-ready deleted record.
type Row struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	AssetTag          string `json:"assetTag,omitempty"`
	DeletedAt         string `json:"deletedAt,omitempty"`
	PurchaseCost      string `json:"purchaseCost,omitempty"`
	Category          string `json:"category"`
	Manufacturer      string `json:"manufacturer"`
	Supplier          string `json:"supplier"`
	Location          string `json:"location"`
	Eligible          bool   `json:"eligible"`
	DaysUntilEligible *int   `json:"daysUntilEligible"`
	Selected          bool   `json:"selected"`
}

// Rows renders one collection with resolved names and retention state.
// Eligibility is recomputed against now on every call, never cached.
func (a *Aggregator) Rows(ctx context.Context, s *Session, kind Kind, now time.Time) []Row {
	s.mu.Lock()
	records := make([]DeletedRecord, len(s.recordsLocked(kind)))
	copy(records, s.recordsLocked(kind))
	resolver := &Resolver{Lookups: s.lookups, Products: s.products}
	selected := make(map[int64]struct{}, len(s.selection))
	if kind == s.activeKind {
		for id := range s.selection {
			selected[id] = struct{}{}
		}
	}
	s.mu.Unlock()

	rows := make([]Row, 0, len(records))
	for i := range records {
		rec := &records[i]
		deletedAt := rec.DeletedAt.Ptr()

		row := Row{
			ID:                rec.ID,
			Name:              rec.Name,
			AssetTag:          rec.AssetTag,
			Category:          resolver.Field(ctx, rec, DimCategory),
			Manufacturer:      resolver.Field(ctx, rec, DimManufacturer),
			Supplier:          resolver.Field(ctx, rec, DimSupplier),
			Location:          resolver.Field(ctx, rec, DimLocation),
			Eligible:          retention.Eligible(deletedAt, a.windowDays, now),
			DaysUntilEligible: retention.DaysUntilEligible(deletedAt, a.windowDays, now),
		}
		if deletedAt != nil {
			row.DeletedAt = deletedAt.Format(time.RFC3339)
		}
		if rec.PurchaseCost != nil {
			row.PurchaseCost = rec.PurchaseCost.StringFixed(2)
		}
		if _, ok := selected[rec.ID]; ok {
			row.Selected = true
		}
		rows = append(rows, row)
	}
	return rows
}

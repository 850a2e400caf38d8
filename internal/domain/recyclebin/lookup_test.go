package recyclebin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupMap_CanonicalKeys(t *testing.T) {
	m := make(LookupMap)
	m.Add(int64(3), "Laptops")
	m.Add("4", "Desktops")
	m.Add(float64(5), "Monitors") // JSON numbers decode as float64

	for key, want := range map[string]string{"3": "Laptops", "4": "Desktops", "5": "Monitors"} {
		name, ok := m.Resolve(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, name)
	}

	_, ok := m.Resolve("")
	assert.False(t, ok)
}

func TestProductCache_MergedKeepsExisting(t *testing.T) {
	cache := ProductCache{1: {ID: 1, Name: "Keyboard"}}

	merged := cache.Merged(map[int64]Product{2: {ID: 2, Name: "Mouse"}})
	merged = merged.Merged(map[int64]Product{3: {ID: 3, Name: "Dock"}})

	assert.Len(t, merged, 3)
	assert.Equal(t, "Keyboard", merged[1].Name)
	assert.Equal(t, "Dock", merged[3].Name)

	// The original is untouched: readers holding it must never observe writes.
	assert.Len(t, cache, 1)
}

func TestProductCache_MissingFrom(t *testing.T) {
	cache := ProductCache{10: {ID: 10}}
	records := []DeletedRecord{
		{ID: 1, Product: Ref{ID: i64(10)}}, // cached
		{ID: 2, Product: Ref{ID: i64(11)}},
		{ID: 3, Product: Ref{ID: i64(11)}}, // duplicate
		{ID: 4},                            // no product ref
	}

	assert.Equal(t, []int64{11}, cache.MissingFrom(records))
}

func TestResolver_Precedence(t *testing.T) {
	ctx := context.Background()

	t.Run("embedded name wins", func(t *testing.T) {
		r := &Resolver{Lookups: NewLookups(), Products: ProductCache{}}
		rec := &DeletedRecord{ID: 1, Category: Ref{ID: i64(3), Name: "Embedded"}}
		r.Lookups.Categories.Add(int64(3), "FromLookup")

		assert.Equal(t, "Embedded", r.Field(ctx, rec, DimCategory))
	})

	t.Run("details name beats lookup", func(t *testing.T) {
		r := &Resolver{Lookups: NewLookups(), Products: ProductCache{}}
		rec := &DeletedRecord{ID: 1, Category: Ref{ID: i64(3)}, CategoryDetails: Ref{Name: "FromDetails"}}
		r.Lookups.Categories.Add(int64(3), "FromLookup")

		assert.Equal(t, "FromDetails", r.Field(ctx, rec, DimCategory))
	})

	t.Run("product field beats raw lookup", func(t *testing.T) {
		r := &Resolver{
			Lookups: NewLookups(),
			Products: ProductCache{55: {
				ID:              55,
				CategoryDetails: Ref{Name: "Laptop"},
			}},
		}
		r.Lookups.Categories.Add(int64(3), "Desktop")
		rec := &DeletedRecord{ID: 1, Category: Ref{ID: i64(3)}, Product: Ref{ID: i64(55)}}

		assert.Equal(t, "Laptop", r.Field(ctx, rec, DimCategory))
	})

	t.Run("lookup fallback", func(t *testing.T) {
		r := &Resolver{Lookups: NewLookups(), Products: ProductCache{}}
		r.Lookups.Suppliers.Add(int64(8), "Acme Corp")
		rec := &DeletedRecord{ID: 1, Supplier: Ref{ID: i64(8)}}

		assert.Equal(t, "Acme Corp", r.Field(ctx, rec, DimSupplier))
	})

	t.Run("no product fallthrough for supplier", func(t *testing.T) {
		r := &Resolver{
			Lookups:  NewLookups(),
			Products: ProductCache{55: {ID: 55, CategoryDetails: Ref{Name: "Laptop"}}},
		}
		rec := &DeletedRecord{ID: 1, Supplier: Ref{ID: i64(8)}, Product: Ref{ID: i64(55)}}

		assert.Equal(t, "#8", r.Field(ctx, rec, DimSupplier))
	})

	t.Run("degraded display with id", func(t *testing.T) {
		r := &Resolver{Lookups: NewLookups(), Products: ProductCache{}}
		rec := &DeletedRecord{ID: 1, Location: Ref{ID: i64(12)}}

		assert.Equal(t, "#12", r.Field(ctx, rec, DimLocation))
	})

	t.Run("degraded display without id", func(t *testing.T) {
		r := &Resolver{Lookups: NewLookups(), Products: ProductCache{}}
		rec := &DeletedRecord{ID: 1}

		assert.Equal(t, "N/A", r.Field(ctx, rec, DimLocation))
	})
}

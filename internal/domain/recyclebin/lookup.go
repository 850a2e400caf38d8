package recyclebin

import (
	"context"
	"fmt"
	"strconv"

	"assetdesk/pkg/logger"
)

// Dimension names a resolvable reference field.
type Dimension string

const (
	DimCategory     Dimension = "category"
	DimManufacturer Dimension = "manufacturer"
	DimSupplier     Dimension = "supplier"
	DimLocation     Dimension = "location"
)

// LookupMap maps identifier to display name for one dimension.
// Keys are always the string form of the identifier.
type LookupMap map[string]string

// Add inserts an entry, canonicalising the key to its string form.
func (m LookupMap) Add(id any, name string) {
	key := canonicalKey(id)
	if key == "" || name == "" {
		return
	}
	m[key] = name
}

// Resolve returns the display name for the canonical key form of id.
func (m LookupMap) Resolve(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	name, ok := m[key]
	return name, ok
}

func canonicalKey(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Lookups bundles one LookupMap per dimension.
type Lookups struct {
	Categories    LookupMap
	Manufacturers LookupMap
	Suppliers     LookupMap
	Locations     LookupMap
}

// NewLookups creates empty lookup maps for all dimensions.
func NewLookups() Lookups {
	return Lookups{
		Categories:    make(LookupMap),
		Manufacturers: make(LookupMap),
		Suppliers:     make(LookupMap),
		Locations:     make(LookupMap),
	}
}

func (l Lookups) byDimension(dim Dimension) LookupMap {
	switch dim {
	case DimCategory:
		return l.Categories
	case DimManufacturer:
		return l.Manufacturers
	case DimSupplier:
		return l.Suppliers
	case DimLocation:
		return l.Locations
	}
	return nil
}

// ProductCache maps product id to its resolved record. Populated lazily for
// ids actually referenced by the loaded records.
type ProductCache map[int64]Product

// Merged returns a new cache holding the receiver's entries plus the given
// ones. The receiver is never written to: a published cache may still be read
// by in-flight renders, so updates replace the session's map rather than
// mutate it.
func (c ProductCache) Merged(entries map[int64]Product) ProductCache {
	out := make(ProductCache, len(c)+len(entries))
	for id, p := range c {
		out[id] = p
	}
	for id, p := range entries {
		out[id] = p
	}
	return out
}

// MissingFrom returns product ids referenced by records but not yet cached,
// deduplicated.
func (c ProductCache) MissingFrom(records []DeletedRecord) []int64 {
	seen := make(map[int64]struct{})
	var missing []int64
	for _, rec := range records {
		if rec.Product.ID == nil {
			continue
		}
		id := *rec.Product.ID
		if _, cached := c[id]; cached {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing
}

// Resolver turns raw references into display names.
//
// Precedence per field, first match wins:
//  1. name embedded directly on the record's ref
//  2. nested details object's name
//  3. the parent product's corresponding field (category/manufacturer only)
//  4. lookup-map entry keyed by the raw identifier
//
// When all attempts fail the display degrades to "#<id>" or "N/A" and a
// diagnostic entry is logged with the record id and raw reference value.
type Resolver struct {
	Lookups  Lookups
	Products ProductCache
}

// Field resolves one dimension of a record to its display name.
func (r *Resolver) Field(ctx context.Context, rec *DeletedRecord, dim Dimension) string {
	ref, details := rec.refsFor(dim)

	if ref.Name != "" {
		return ref.Name
	}
	if details.Name != "" {
		return details.Name
	}

	// Product fall-through applies only to the dimensions a product carries.
	if (dim == DimCategory || dim == DimManufacturer) && rec.Product.ID != nil {
		if product, ok := r.Products[*rec.Product.ID]; ok {
			if name := product.fieldName(dim); name != "" {
				return name
			}
		}
	}

	if lm := r.Lookups.byDimension(dim); lm != nil {
		if name, ok := lm.Resolve(ref.Key()); ok {
			return name
		}
	}

	logger.Warn(ctx, "unresolved reference",
		"record_id", rec.ID,
		"dimension", string(dim),
		"raw_ref", ref.Key(),
	)
	if key := ref.Key(); key != "" {
		return "#" + key
	}
	return "N/A"
}

func (rec *DeletedRecord) refsFor(dim Dimension) (Ref, Ref) {
	switch dim {
	case DimCategory:
		return rec.Category, rec.CategoryDetails
	case DimManufacturer:
		return rec.Manufacturer, rec.ManufacturerDetails
	case DimSupplier:
		return rec.Supplier, rec.SupplierDetails
	case DimLocation:
		return rec.Location, rec.LocationDetails
	}
	return Ref{}, Ref{}
}

func (p Product) fieldName(dim Dimension) string {
	var ref, details Ref
	switch dim {
	case DimCategory:
		ref, details = p.Category, p.CategoryDetails
	case DimManufacturer:
		ref, details = p.Manufacturer, p.ManufacturerDetails
	default:
		return ""
	}
	if ref.Name != "" {
		return ref.Name
	}
	return details.Name
}

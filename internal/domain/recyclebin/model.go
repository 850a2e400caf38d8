// Package recyclebin implements the retention and recovery workflow for
// soft-deleted inventory records: aggregation of deleted assets and
// components from the backend collaborators, id-to-name resolution, and the
// bulk recover/permanently-delete coordination.
package recyclebin

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"assetdesk/internal/core/types"
)

// Kind identifies the entity kind of a deleted record.
type Kind string

const (
	KindAsset     Kind = "asset"
	KindComponent Kind = "component"
)

// Valid reports whether k is a known entity kind.
func (k Kind) Valid() bool {
	return k == KindAsset || k == KindComponent
}

// Ref is a tolerant foreign-key reference. The backends encode references as
// either an embedded {"id": 3, "name": "Laptops"} object, a bare integer id,
// a numeric string, or null. Anything else decodes to the absent Ref.
type Ref struct {
	ID   *int64
	Name string
}

// Present reports whether the reference carries an id or a name.
func (r Ref) Present() bool {
	return r.ID != nil || r.Name != ""
}

// Key returns the canonical string form of the identifier for lookup-map
// access, or "" when the reference carries no id. Canonicalising here and at
// map insertion removes numeric-vs-string key mismatches as a bug class.
func (r Ref) Key() string {
	if r.ID == nil {
		return ""
	}
	return strconv.FormatInt(*r.ID, 10)
}

// UnmarshalJSON accepts object, number, numeric-string, and null shapes.
func (r *Ref) UnmarshalJSON(data []byte) error {
	*r = Ref{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		r.ID = &n
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, err := strconv.ParseInt(s, 10, 64); err == nil {
			r.ID = &parsed
		}
		return nil
	}

	var obj struct {
		ID   *int64 `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		r.ID = obj.ID
		r.Name = obj.Name
		return nil
	}

	// Unknown shape: absent reference, not a decode failure.
	return nil
}

// MarshalJSON encodes the object shape, or null when absent.
func (r Ref) MarshalJSON() ([]byte, error) {
	if !r.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		ID   *int64 `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	}{r.ID, r.Name})
}

// DeletedRecord is a soft-deleted asset or component as reported by the
// inventory collaborator. Reference fields come in two layers: the plain ref
// (possibly just an id) and an optional expanded "details" object.
type DeletedRecord struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	AssetTag string `json:"asset_tag,omitempty"`

	// DeletedAt is absent when the backend never recorded a deletion time;
	// such records are never eligible for permanent deletion.
	DeletedAt types.Timestamp `json:"deleted_at"`

	PurchaseCost *decimal.Decimal `json:"purchase_cost,omitempty"`

	Category            Ref `json:"category"`
	CategoryDetails     Ref `json:"category_details"`
	Manufacturer        Ref `json:"manufacturer"`
	ManufacturerDetails Ref `json:"manufacturer_details"`
	Supplier            Ref `json:"supplier"`
	SupplierDetails     Ref `json:"supplier_details"`
	Location            Ref `json:"location"`
	LocationDetails     Ref `json:"location_details"`

	// Product references the parent product for components; category and
	// manufacturer resolution falls through to it when the direct fields
	// are absent.
	Product Ref `json:"product"`
}

// Product is a parent product record fetched for reference resolution.
type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	Category            Ref `json:"category"`
	CategoryDetails     Ref `json:"category_details"`
	Manufacturer        Ref `json:"manufacturer"`
	ManufacturerDetails Ref `json:"manufacturer_details"`
}

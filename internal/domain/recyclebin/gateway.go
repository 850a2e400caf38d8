package recyclebin

import "context"

// DropdownKind selects which dropdown subset a settings call returns.
// Locations live on a different collaborator endpoint than the product
// dimensions, hence the split.
type DropdownKind string

const (
	DropdownProduct  DropdownKind = "product"
	DropdownLocation DropdownKind = "location"
)

// Option is one dropdown entry.
type Option struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Dropdowns is the kind-dependent subset of lookup dimensions returned by
// the settings collaborator.
type Dropdowns struct {
	Categories    []Option `json:"categories"`
	Manufacturers []Option `json:"manufacturers"`
	Suppliers     []Option `json:"suppliers"`
	Locations     []Option `json:"locations"`
}

// DeletedItems is the combined payload of both deleted collections.
type DeletedItems struct {
	Assets     []DeletedRecord `json:"deleted_assets"`
	Components []DeletedRecord `json:"deleted_components"`
}

// BulkResult partitions a bulk-delete outcome. Skipped is keyed by the
// string form of the id, mapping to the backend's reason text.
type BulkResult struct {
	Deleted []int64           `json:"deleted"`
	Skipped map[string]string `json:"skipped"`
}

// Gateway is the collaborator surface the recycle bin consumes. The
// infrastructure layer implements it against the inventory and settings
// services.
type Gateway interface {
	// DeletedItems fetches both deleted collections in one call.
	DeletedItems(ctx context.Context) (*DeletedItems, error)

	// Dropdowns fetches the lookup dimensions for one kind.
	Dropdowns(ctx context.Context, kind DropdownKind) (*Dropdowns, error)

	// Product fetches a single product by id.
	Product(ctx context.Context, id int64) (*Product, error)

	// Recover restores one soft-deleted record.
	Recover(ctx context.Context, kind Kind, id int64) error

	// Delete permanently removes one record.
	Delete(ctx context.Context, kind Kind, id int64) error

	// BulkDelete permanently removes a batch, returning the partition of
	// confirmed deletions and skipped ids.
	BulkDelete(ctx context.Context, kind Kind, ids []int64) (*BulkResult, error)
}

package backend

import (
	"context"
	"fmt"
	"net/http"

	"assetdesk/internal/core/apperror"
	"assetdesk/internal/domain/recyclebin"
)

// InventoryClient talks to the inventory service that owns the deleted
// collections and the product catalog.
type InventoryClient struct {
	*client
}

// NewInventoryClient creates an inventory service client.
func NewInventoryClient(cfg Config) *InventoryClient {
	return &InventoryClient{client: newClient("inventory", cfg)}
}

// kindPath maps an entity kind onto its inventory URL segment.
func kindPath(kind recyclebin.Kind) string {
	if kind == recyclebin.KindComponent {
		return "components"
	}
	return "hardware"
}

// DeletedItems fetches both deleted collections in one call.
func (c *InventoryClient) DeletedItems(ctx context.Context) (*recyclebin.DeletedItems, error) {
	var items recyclebin.DeletedItems
	if err := c.do(ctx, http.MethodGet, "/api/v1/deleted", nil, &items); err != nil {
		return nil, err
	}
	return &items, nil
}

// Product fetches one catalog product by id.
func (c *InventoryClient) Product(ctx context.Context, id int64) (*recyclebin.Product, error) {
	var p recyclebin.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Recover restores a single deleted item.
func (c *InventoryClient) Recover(ctx context.Context, kind recyclebin.Kind, id int64) error {
	path := fmt.Sprintf("/api/v1/%s/%d/restore", kindPath(kind), id)
	var envelope statusEnvelope
	if err := c.do(ctx, http.MethodPost, path, nil, &envelope); err != nil {
		return err
	}
	return c.checkEnvelope(&envelope, path)
}

// Delete permanently deletes a single item.
func (c *InventoryClient) Delete(ctx context.Context, kind recyclebin.Kind, id int64) error {
	path := fmt.Sprintf("/api/v1/%s/%d", kindPath(kind), id)
	var envelope statusEnvelope
	if err := c.do(ctx, http.MethodDelete, path, nil, &envelope); err != nil {
		return err
	}
	return c.checkEnvelope(&envelope, path)
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

type bulkDeleteResponse struct {
	statusEnvelope
	Deleted []int64           `json:"deleted"`
	Skipped map[string]string `json:"skipped"`
}

// BulkDelete submits one permanent-delete request for many ids. The backend
// partitions the outcome: confirmed ids in deleted, refused ids in skipped
// with a per-id reason.
func (c *InventoryClient) BulkDelete(ctx context.Context, kind recyclebin.Kind, ids []int64) (*recyclebin.BulkResult, error) {
	path := fmt.Sprintf("/api/v1/%s/bulkdelete", kindPath(kind))
	var resp bulkDeleteResponse
	if err := c.do(ctx, http.MethodPost, path, bulkDeleteRequest{IDs: ids}, &resp); err != nil {
		return nil, err
	}
	if err := c.checkEnvelope(&resp.statusEnvelope, path); err != nil {
		return nil, err
	}
	return &recyclebin.BulkResult{Deleted: resp.Deleted, Skipped: resp.Skipped}, nil
}

// checkEnvelope turns a 200-with-error-status response into an upstream error.
func (c *InventoryClient) checkEnvelope(envelope *statusEnvelope, path string) error {
	if !envelope.failed() {
		return nil
	}
	detail := envelope.messageText()
	return apperror.NewUpstream(c.service, detail,
		fmt.Errorf("%s reported status error", path)).WithDetail("path", path)
}

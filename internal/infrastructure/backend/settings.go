package backend

import (
	"context"
	"net/http"
	"net/url"

	"assetdesk/internal/domain/recyclebin"
)

// SettingsClient talks to the settings service that owns the dropdown
// dimensions (categories, manufacturers, suppliers, locations).
type SettingsClient struct {
	*client
}

// NewSettingsClient creates a settings service client.
func NewSettingsClient(cfg Config) *SettingsClient {
	return &SettingsClient{client: newClient("settings", cfg)}
}

// Dropdowns fetches one dropdown group. kind=product returns categories,
// manufacturers and suppliers; kind=location returns locations.
func (c *SettingsClient) Dropdowns(ctx context.Context, kind recyclebin.DropdownKind) (*recyclebin.Dropdowns, error) {
	path := "/api/v1/dropdowns?kind=" + url.QueryEscape(string(kind))
	var dd recyclebin.Dropdowns
	if err := c.do(ctx, http.MethodGet, path, nil, &dd); err != nil {
		return nil, err
	}
	return &dd, nil
}

// Gateway bundles the collaborator clients behind the domain gateway.
type Gateway struct {
	*InventoryClient
	*SettingsClient
}

// NewGateway composes the inventory and settings clients.
func NewGateway(inventory *InventoryClient, settings *SettingsClient) *Gateway {
	return &Gateway{InventoryClient: inventory, SettingsClient: settings}
}

var _ recyclebin.Gateway = (*Gateway)(nil)

package dto

import "assetdesk/internal/domain/recyclebin"

// SessionView is the full render state of one recycle bin view session.
type SessionView struct {
	SessionID  string            `json:"sessionId"`
	ActiveKind string            `json:"activeKind"`
	LoadFailed bool              `json:"loadFailed"`
	LoadError  string            `json:"loadError,omitempty"`
	Rows       []recyclebin.Row  `json:"rows"`
	Selection  []int64           `json:"selection"`
	Toasts     []recyclebin.Toast `json:"toasts"`
}

// TabRequest switches the active entity-kind tab.
type TabRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// SelectionRequest checks or unchecks one row.
type SelectionRequest struct {
	ID       int64 `json:"id" binding:"required"`
	Selected bool  `json:"selected"`
}

// ActionRequest opens a recover or delete confirmation. ID targets a single
// row; omitted means act on the current selection.
type ActionRequest struct {
	ID *int64 `json:"id"`
}

// DismissToastRequest removes a toast ahead of its timer.
type DismissToastRequest struct {
	ToastID string `json:"toastId" binding:"required"`
}

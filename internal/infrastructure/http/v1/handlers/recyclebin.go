package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"assetdesk/internal/core/apperror"
	"assetdesk/internal/domain/recyclebin"
	"assetdesk/internal/infrastructure/http/v1/dto"
	"assetdesk/pkg/logger"
)

// RecycleBinHandler binds the recycle bin subsystem to the HTTP surface.
// One session per console view instance; all state lives server-side.
type RecycleBinHandler struct {
	*BaseHandler
	manager     *recyclebin.Manager
	aggregator  *recyclebin.Aggregator
	coordinator *recyclebin.Coordinator
}

// NewRecycleBinHandler creates the recycle bin handler.
func NewRecycleBinHandler(
	base *BaseHandler,
	manager *recyclebin.Manager,
	aggregator *recyclebin.Aggregator,
	coordinator *recyclebin.Coordinator,
) *RecycleBinHandler {
	return &RecycleBinHandler{
		BaseHandler: base,
		manager:     manager,
		aggregator:  aggregator,
		coordinator: coordinator,
	}
}

// RegisterRoutes wires the session routes onto a router group.
func (h *RecycleBinHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/recyclebin/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("/:sid", h.GetSession)
		sessions.DELETE("/:sid", h.CloseSession)
		sessions.POST("/:sid/reload", h.Reload)
		sessions.POST("/:sid/tab", h.SetTab)
		sessions.POST("/:sid/selection", h.SetSelection)
		sessions.POST("/:sid/recover", h.OpenRecover)
		sessions.POST("/:sid/delete", h.OpenDelete)
		sessions.POST("/:sid/confirm", h.Confirm)
		sessions.POST("/:sid/cancel", h.Cancel)
		sessions.POST("/:sid/toasts/dismiss", h.DismissToast)
	}
}

// CreateSession opens a view session and performs the initial load. A failed
// load still yields a usable session carrying the load-error flag.
func (h *RecycleBinHandler) CreateSession(c *gin.Context) {
	s := h.manager.Create()
	if err := h.aggregator.Load(c.Request.Context(), s); err != nil {
		// Surfaced through the view's loadFailed flag, not as an HTTP error.
		logger.Warn(c.Request.Context(), "initial load failed", "session_id", s.ID, "error", err)
	}
	h.OK(c, h.view(c, s))
}

// GetSession renders the current view state.
func (h *RecycleBinHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.OK(c, h.view(c, s))
}

// CloseSession tears the session down.
func (h *RecycleBinHandler) CloseSession(c *gin.Context) {
	h.manager.Remove(c.Param("sid"))
	h.NoContent(c)
}

// Reload refetches both collections and their lookup state.
func (h *RecycleBinHandler) Reload(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.aggregator.Load(c.Request.Context(), s); err != nil {
		logger.Warn(c.Request.Context(), "reload failed", "session_id", s.ID, "error", err)
	}
	h.OK(c, h.view(c, s))
}

// SetTab switches the active entity kind.
func (h *RecycleBinHandler) SetTab(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.TabRequest
	if !h.BindJSON(c, &req) {
		return
	}
	kind := recyclebin.Kind(req.Kind)
	if !kind.Valid() {
		h.Error(c, apperror.NewValidation("unknown kind").WithDetail("kind", req.Kind))
		return
	}

	s.SetActiveKind(kind)
	h.OK(c, h.view(c, s))
}

// SetSelection checks or unchecks one row of the active tab.
func (h *RecycleBinHandler) SetSelection(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.SelectionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s.SetSelected(req.ID, req.Selected)
	h.OK(c, h.view(c, s))
}

// OpenRecover opens the recover confirmation modal.
func (h *RecycleBinHandler) OpenRecover(c *gin.Context) {
	h.openAction(c, h.coordinator.OpenRecover)
}

// OpenDelete opens the permanent-delete confirmation modal.
func (h *RecycleBinHandler) OpenDelete(c *gin.Context) {
	h.openAction(c, h.coordinator.OpenDelete)
}

func (h *RecycleBinHandler) openAction(c *gin.Context, open func(*recyclebin.Session, *int64) error) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.ActionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := open(s, req.ID); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.view(c, s))
}

// Confirm submits the pending action and returns its outcome.
func (h *RecycleBinHandler) Confirm(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	outcome, err := h.coordinator.Confirm(c.Request.Context(), s)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"outcome": outcome, "view": h.view(c, s)})
}

// Cancel dismisses the pending confirmation, keeping the selection.
func (h *RecycleBinHandler) Cancel(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	h.coordinator.Cancel(s)
	h.OK(c, h.view(c, s))
}

// DismissToast removes a toast ahead of its auto-dismiss timer.
func (h *RecycleBinHandler) DismissToast(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.DismissToastRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s.DismissToast(req.ToastID)
	h.OK(c, h.view(c, s))
}

func (h *RecycleBinHandler) session(c *gin.Context) (*recyclebin.Session, bool) {
	sid := c.Param("sid")
	s, ok := h.manager.Get(sid)
	if !ok {
		h.Error(c, apperror.NewNotFound("session", sid))
		return nil, false
	}
	return s, true
}

func (h *RecycleBinHandler) view(c *gin.Context, s *recyclebin.Session) dto.SessionView {
	kind := s.ActiveKind()
	failed, loadErr := s.LoadState()
	return dto.SessionView{
		SessionID:  s.ID,
		ActiveKind: string(kind),
		LoadFailed: failed,
		LoadError:  loadErr,
		Rows:       h.aggregator.Rows(c.Request.Context(), s, kind, time.Now()),
		Selection:  s.Selection(),
		Toasts:     s.Toasts(),
	}
}

package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "assetdesk/internal/core/context"
	"assetdesk/internal/core/types"
	"assetdesk/internal/domain/recyclebin"
	"assetdesk/internal/infrastructure/storage/postgres"
	"assetdesk/pkg/logger"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	switch token {
	case "valid-token":
		return &appctx.UserContext{UserID: "u-1", Email: "u@example.com", IsAdmin: true}, nil
	case "no-perms-token":
		return &appctx.UserContext{UserID: "u-2", Email: "viewer@example.com"}, nil
	default:
		return nil, assert.AnError
	}
}

// stubGateway serves a fixed deleted collection.
type stubGateway struct{}

func (stubGateway) DeletedItems(context.Context) (*recyclebin.DeletedItems, error) {
	deletedAt := types.NewTimestamp(time.Now().Add(-100 * 24 * time.Hour))
	return &recyclebin.DeletedItems{
		Assets: []recyclebin.DeletedRecord{{ID: 1, Name: "MacBook", DeletedAt: deletedAt}},
	}, nil
}

func (stubGateway) Dropdowns(context.Context, recyclebin.DropdownKind) (*recyclebin.Dropdowns, error) {
	return &recyclebin.Dropdowns{}, nil
}

func (stubGateway) Product(context.Context, int64) (*recyclebin.Product, error) {
	return nil, assert.AnError
}

func (stubGateway) Recover(context.Context, recyclebin.Kind, int64) error { return nil }

func (stubGateway) Delete(context.Context, recyclebin.Kind, int64) error { return nil }

func (stubGateway) BulkDelete(_ context.Context, _ recyclebin.Kind, ids []int64) (*recyclebin.BulkResult, error) {
	return &recyclebin.BulkResult{Deleted: ids}, nil
}

// stubActionLog serves a fixed activity page.
type stubActionLog struct {
	rows []postgres.ActionRow
}

func (s stubActionLog) List(_ context.Context, limit int) ([]postgres.ActionRow, error) {
	if limit < len(s.rows) {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error"})
	require.NoError(t, err)

	gw := stubGateway{}
	return NewRouter(RouterConfig{
		Logger:         log,
		JWTValidator:   stubValidator{},
		SessionManager: recyclebin.NewManager(time.Hour),
		Aggregator:     recyclebin.NewAggregator(gw, 90),
		Coordinator:    recyclebin.NewCoordinator(gw, 90, nil),
	})
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthNoAuth(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AuthRequired(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/recyclebin/sessions", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/recyclebin/sessions", "bad-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/recyclebin/sessions", "no-perms-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_SessionLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/recyclebin/sessions", "valid-token", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		SessionID  string `json:"sessionId"`
		ActiveKind string `json:"activeKind"`
		Rows       []struct {
			ID       int64 `json:"id"`
			Eligible bool  `json:"eligible"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.NotEmpty(t, view.SessionID)
	assert.Equal(t, "asset", view.ActiveKind)
	require.Len(t, view.Rows, 1)
	assert.True(t, view.Rows[0].Eligible)

	base := "/api/v1/recyclebin/sessions/" + view.SessionID

	rec = doRequest(t, router, http.MethodPost, base+"/selection", "valid-token", `{"id": 1, "selected": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, base+"/recover", "valid-token", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, base+"/confirm", "valid-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"succeeded"`)

	rec = doRequest(t, router, http.MethodDelete, base, "valid-token", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodGet, base, "valid-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_UnknownSession(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/recyclebin/sessions/nope", "valid-token", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestRouter_ActionLog(t *testing.T) {
	log, err := logger.New(logger.Config{Level: "error"})
	require.NoError(t, err)

	gw := stubGateway{}
	entry := postgres.ActionRow{
		ID:             uuid.New(),
		Action:         "delete",
		Kind:           "asset",
		RequestedCount: 3,
		AffectedCount:  2,
		Outcome:        "partial",
		ActorEmail:     "u@example.com",
		Payload:        json.RawMessage(`{"requested":[1,2,3]}`),
		CreatedAt:      time.Now().UTC(),
	}
	router := NewRouter(RouterConfig{
		Logger:         log,
		JWTValidator:   stubValidator{},
		SessionManager: recyclebin.NewManager(time.Hour),
		Aggregator:     recyclebin.NewAggregator(gw, 90),
		Coordinator:    recyclebin.NewCoordinator(gw, 90, nil),
		ActionLog:      stubActionLog{rows: []postgres.ActionRow{entry}},
	})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/actionlog", "valid-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"action":"delete"`)
	assert.Contains(t, rec.Body.String(), `"outcome":"partial"`)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/actionlog?limit=abc", "valid-token", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/actionlog", "no-perms-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_ActionLogDisabledByDefault(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/actionlog", "valid-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_EmptySelectionRejected(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/recyclebin/sessions", "valid-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))

	rec = doRequest(t, router, http.MethodPost,
		"/api/v1/recyclebin/sessions/"+view.SessionID+"/delete", "valid-token", `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMPTY_SELECTION")
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atelier/backend/internal/domain/prescription"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/auth"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestOptional(t *testing.T) {
	var body struct {
		SpaceID Optional[uuid.UUID] `json:"spaceId"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))
	assert.False(t, body.SpaceID.Set)
	assert.False(t, body.SpaceID.Cleared())

	require.NoError(t, json.Unmarshal([]byte(`{"spaceId": null}`), &body))
	assert.True(t, body.SpaceID.Set)
	assert.True(t, body.SpaceID.Cleared())

	id := uuid.New()
	require.NoError(t, json.Unmarshal([]byte(`{"spaceId":"`+id.String()+`"}`), &body))
	require.NotNil(t, body.SpaceID.Value)
	assert.Equal(t, id, *body.SpaceID.Value)
	assert.False(t, body.SpaceID.Cleared())

	assert.Error(t, json.Unmarshal([]byte(`{"spaceId":"salon"}`), &body))
}

func TestUpdatePrescriptionRequest_ToInput(t *testing.T) {
	var req UpdatePrescriptionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"spaceId":null,"quantity":3,"status":"COMMANDE"}`), &req))
	in := req.toInput()
	assert.True(t, in.ClearSpace)
	assert.Nil(t, in.SpaceID)
	require.NotNil(t, in.Quantity)
	assert.Equal(t, 3, *in.Quantity)
	require.NotNil(t, in.Status)
	assert.Equal(t, prescription.StatusCommande, *in.Status)

	var empty UpdatePrescriptionRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.True(t, empty.toInput().IsEmpty())
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"not found", shared.NewNotFoundError("Project"), http.StatusNotFound, dto.ErrCodeNotFound, ""},
		{"forbidden", shared.NewForbiddenError("Owner only"), http.StatusForbidden, dto.ErrCodeForbidden, "Owner only"},
		{"wrapped validation", fmt.Errorf("update: %w", shared.NewValidationError("Quantity must be at least 1")), http.StatusBadRequest, dto.ErrCodeValidation, "Quantity must be at least 1"},
		{"transition", shared.NewDomainError(shared.CodeInvalidTransition, "no"), http.StatusBadRequest, dto.ErrCodeInvalidTransition, "no"},
		{"duplicate", shared.NewDomainError(shared.CodeAlreadyExists, "Email already registered"), http.StatusConflict, dto.ErrCodeAlreadyExists, ""},
		{"unknown code", shared.NewDomainError("PASSWORD_HASH_ERROR", "secret detail"), http.StatusInternalServerError, dto.ErrCodeInternal, dto.InternalErrorMessage},
		{"plain error", errors.New("pq: connection refused"), http.StatusInternalServerError, dto.ErrCodeInternal, dto.InternalErrorMessage},
	}
	h := NewBaseHandler(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, body.Error)
			}
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestViewer(t *testing.T) {
	h := NewBaseHandler(nil)

	t.Run("no claims", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		_, ok := h.viewer(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admin claims", func(t *testing.T) {
		id := uuid.New()
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set(middleware.JWTClaimsKey, &auth.Claims{UserID: id.String(), Role: "ADMIN"})
		v, ok := h.viewer(c)
		require.True(t, ok)
		assert.Equal(t, id, v.UserID)
		assert.True(t, v.IsAdmin)
	})

	t.Run("malformed subject", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set(middleware.JWTClaimsKey, &auth.Claims{UserID: "42", Role: "DESIGNER"})
		_, ok := h.viewer(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPathIDAndQueryUUID(t *testing.T) {
	h := NewBaseHandler(nil)
	engine := gin.New()
	engine.GET("/projects/:id", func(c *gin.Context) {
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		spaceID, ok := h.queryUUID(c, "spaceId")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "space": spaceID, "unassigned": queryBool(c, "unassigned")})
	})

	serve := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	id := uuid.New()
	w := serve("/projects/" + id.String() + "?unassigned=true")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"space":null`)
	assert.Contains(t, w.Body.String(), `"unassigned":true`)

	assert.Equal(t, http.StatusBadRequest, serve("/projects/abc").Code)
	assert.Equal(t, http.StatusBadRequest, serve("/projects/"+id.String()+"?spaceId=salon").Code)
}

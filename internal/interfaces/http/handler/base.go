package handler

import (
	"errors"
	"net/http"

	"github.com/atelier/backend/internal/domain/identity"
	"github.com/atelier/backend/internal/domain/project"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a BaseHandler that logs unexpected errors to l
func NewBaseHandler(l *zap.Logger) BaseHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return BaseHandler{logger: l}
}

// viewer builds the caller identity from the JWT claims
func (h *BaseHandler) viewer(c *gin.Context) (project.Viewer, bool) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return project.Viewer{}, false
	}
	id, err := claims.GetUserUUID()
	if err != nil {
		h.Unauthorized(c, "Invalid session")
		return project.Viewer{}, false
	}
	return project.Viewer{UserID: id, IsAdmin: claims.Role == string(identity.RoleAdmin)}, true
}

// pathID parses a UUID path parameter, answering 400 when malformed
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body into req, answering 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// writeList sends a 200 response with a list envelope
func writeList[T any](c *gin.Context, items []T) {
	c.JSON(http.StatusOK, dto.NewListResponse(items))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, dto.NewErrorResponse(code, message))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// HandleError converts domain errors to their status. Anything else is
// logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		if status < http.StatusInternalServerError {
			h.Error(c, status, domainErr.Code, domainErr.Message)
			return
		}
	}

	_ = c.Error(err)
	log := h.logger
	if log == nil {
		log = zap.NewNop()
	}
	logger.Enrich(c.Request.Context(), log).Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, dto.InternalErrorMessage)
}

package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	db        Pinger
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, version string, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(logger),
		db:          db,
		version:     version,
		startTime:   time.Now(),
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"up"`
	Version  string `json:"version,omitempty"`
	Uptime   string `json:"uptime"`
}

// Health godoc
// @Summary      Liveness and database check
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "up",
		Version:  h.version,
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			h.logger.Warn("Health check failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Database = "down"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

// InfoResponse is the body of GET /api/v1/system/info
type InfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	Uptime    string `json:"uptime"`
}

// Info returns build information
// @Router /system/info [get]
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, InfoResponse{
		Name:      "Atelier API",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// NotFound answers unmatched routes with the error envelope
func (h *SystemHandler) NotFound(c *gin.Context) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Route not found")
}

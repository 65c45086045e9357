package handler

import (
	"time"

	projectapp "github.com/atelier/backend/internal/application/project"
	"github.com/atelier/backend/internal/domain/project"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProjectHandler serves projects, their spaces and their client list
type ProjectHandler struct {
	BaseHandler
	projectService *projectapp.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *projectapp.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler:    NewBaseHandler(logger),
		projectService: projectService,
	}
}

// CreateProjectRequest is the body of POST /projects. budgetSpent is
// maintained by the server and ignored when sent.
type CreateProjectRequest struct {
	Name               string              `json:"name" binding:"required,min=1,max=200"`
	Description        string              `json:"description" binding:"max=5000"`
	ClientName         string              `json:"clientName" binding:"required,max=200"`
	BudgetTotal        decimal.Decimal     `json:"budgetTotal"`
	ProgressPercentage int                 `json:"progressPercentage" binding:"gte=0,lte=100"`
	StartDate          *time.Time          `json:"startDate"`
	EndDate            *time.Time          `json:"endDate"`
	Address            valueobject.Address `json:"address"`
	DeliveryAddress    valueobject.Address `json:"deliveryAddress"`
	DeliveryContact    string              `json:"deliveryContact" binding:"max=200"`
	BillingAddress     valueobject.Address `json:"billingAddress"`
	BillingEmail       string              `json:"billingEmail" binding:"omitempty,email"`
}

// UpdateProjectRequest is the body of PATCH /projects/:id
type UpdateProjectRequest struct {
	Name               *string              `json:"name" binding:"omitempty,min=1,max=200"`
	Description        *string              `json:"description" binding:"omitempty,max=5000"`
	ClientName         *string              `json:"clientName" binding:"omitempty,max=200"`
	Status             *string              `json:"status" binding:"omitempty,oneof=ACTIVE ARCHIVED"`
	BudgetTotal        *decimal.Decimal     `json:"budgetTotal"`
	ProgressPercentage *int                 `json:"progressPercentage" binding:"omitempty,gte=0,lte=100"`
	StartDate          *time.Time           `json:"startDate"`
	EndDate            *time.Time           `json:"endDate"`
	Address            *valueobject.Address `json:"address"`
	DeliveryAddress    *valueobject.Address `json:"deliveryAddress"`
	DeliveryContact    *string              `json:"deliveryContact" binding:"omitempty,max=200"`
	BillingAddress     *valueobject.Address `json:"billingAddress"`
	BillingEmail       *string              `json:"billingEmail" binding:"omitempty,email"`
}

// CreateSpaceRequest is the body of POST /projects/:id/spaces
type CreateSpaceRequest struct {
	Name        string           `json:"name" binding:"required,min=1,max=100"`
	Type        string           `json:"type" binding:"required,oneof=SALON CUISINE CHAMBRE SALLE_DE_BAIN BUREAU ENTREE SALLE_A_MANGER EXTERIEUR AUTRE"`
	SurfaceM2   *decimal.Decimal `json:"surfaceM2"`
	Description string           `json:"description" binding:"max=2000"`
}

// UpdateSpaceRequest is the body of PATCH /spaces/:id.
// "surfaceM2": null removes the surface.
type UpdateSpaceRequest struct {
	Name        *string                   `json:"name" binding:"omitempty,min=1,max=100"`
	Type        *string                   `json:"type" binding:"omitempty,oneof=SALON CUISINE CHAMBRE SALLE_DE_BAIN BUREAU ENTREE SALLE_A_MANGER EXTERIEUR AUTRE"`
	SurfaceM2   Optional[decimal.Decimal] `json:"surfaceM2"`
	Description *string                   `json:"description" binding:"omitempty,max=2000"`
}

// AddClientRequest is the body of POST /projects/:id/clients
type AddClientRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// List godoc
// @Summary      List the projects the caller owns or is a client of
// @Tags         projects
// @Produce      json
// @Success      200 {object} dto.ListResponse[project.ProjectResponse]
// @Security     BearerAuth
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	list, err := h.projectService.ListAccessible(c.Request.Context(), v)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writeList(c, list)
}

// Create godoc
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body CreateProjectRequest true "Project"
// @Success      201 {object} project.ProjectResponse
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	var req CreateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.projectService.Create(c.Request.Context(), v, projectapp.ProjectInput{
		Name:               req.Name,
		Description:        req.Description,
		ClientName:         req.ClientName,
		BudgetTotal:        req.BudgetTotal,
		ProgressPercentage: req.ProgressPercentage,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Address:            req.Address,
		DeliveryAddress:    req.DeliveryAddress,
		DeliveryContact:    req.DeliveryContact,
		BillingAddress:     req.BillingAddress,
		BillingEmail:       req.BillingEmail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// Get returns one project
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.projectService.Get(c.Request.Context(), v, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Update applies a partial update
// @Router /projects/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	in := projectapp.UpdateProjectInput{
		Name:               req.Name,
		Description:        req.Description,
		ClientName:         req.ClientName,
		BudgetTotal:        req.BudgetTotal,
		ProgressPercentage: req.ProgressPercentage,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Address:            req.Address,
		DeliveryAddress:    req.DeliveryAddress,
		DeliveryContact:    req.DeliveryContact,
		BillingAddress:     req.BillingAddress,
		BillingEmail:       req.BillingEmail,
	}
	if req.Status != nil {
		s := project.Status(*req.Status)
		in.Status = &s
	}
	p, err := h.projectService.Update(c.Request.Context(), v, id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Delete godoc
// @Summary      Delete a project
// @Description  Removes the project with its spaces, prescriptions, approvals, comments and files.
// @Tags         projects
// @Success      204
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.projectService.Delete(c.Request.Context(), v, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListSpaces returns the project's spaces with their prescription counts
// @Router /projects/{id}/spaces [get]
func (h *ProjectHandler) ListSpaces(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.projectService.ListSpaces(c.Request.Context(), v, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writeList(c, list)
}

// CreateSpace adds a space to a project
// @Router /projects/{id}/spaces [post]
func (h *ProjectHandler) CreateSpace(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req CreateSpaceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s, err := h.projectService.CreateSpace(c.Request.Context(), v, id, projectapp.SpaceInput{
		Name:        req.Name,
		Type:        project.SpaceType(req.Type),
		SurfaceM2:   req.SurfaceM2,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, s)
}

// UpdateSpace applies a partial update
// @Router /spaces/{id} [patch]
func (h *ProjectHandler) UpdateSpace(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateSpaceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	in := projectapp.UpdateSpaceInput{
		Name:         req.Name,
		SurfaceM2:    req.SurfaceM2.Value,
		ClearSurface: req.SurfaceM2.Cleared(),
		Description:  req.Description,
	}
	if req.Type != nil {
		t := project.SpaceType(*req.Type)
		in.Type = &t
	}
	s, err := h.projectService.UpdateSpace(c.Request.Context(), v, id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// DeleteSpace removes a space that has no prescriptions left
// @Router /spaces/{id} [delete]
func (h *ProjectHandler) DeleteSpace(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.projectService.DeleteSpace(c.Request.Context(), v, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListClients returns the users invited on a project
// @Router /projects/{id}/clients [get]
func (h *ProjectHandler) ListClients(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.projectService.ListClients(c.Request.Context(), v, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writeList(c, list)
}

// AddClient invites an existing CLIENT account by email
// @Router /projects/{id}/clients [post]
func (h *ProjectHandler) AddClient(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req AddClientRequest
	if !h.bindJSON(c, &req) {
		return
	}
	client, err := h.projectService.AddClient(c.Request.Context(), v, id, req.Email)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// RemoveClient revokes a client's membership
// @Router /projects/{id}/clients/{userId} [delete]
func (h *ProjectHandler) RemoveClient(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := h.pathID(c, "userId")
	if !ok {
		return
	}
	if err := h.projectService.RemoveClient(c.Request.Context(), v, id, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

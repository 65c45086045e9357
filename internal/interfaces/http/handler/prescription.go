package handler

import (
	"encoding/json"
	"strings"

	documentapp "github.com/atelier/backend/internal/application/document"
	prescriptionapp "github.com/atelier/backend/internal/application/prescription"
	"github.com/atelier/backend/internal/domain/document"
	"github.com/atelier/backend/internal/domain/prescription"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PrescriptionHandler serves prescriptions, their approvals and comments
type PrescriptionHandler struct {
	BaseHandler
	prescriptionService *prescriptionapp.PrescriptionService
	documentService     *documentapp.DocumentService
}

// NewPrescriptionHandler creates a new PrescriptionHandler
func NewPrescriptionHandler(
	prescriptionService *prescriptionapp.PrescriptionService,
	documentService *documentapp.DocumentService,
	logger *zap.Logger,
) *PrescriptionHandler {
	return &PrescriptionHandler{
		BaseHandler:         NewBaseHandler(logger),
		prescriptionService: prescriptionService,
		documentService:     documentService,
	}
}

// CreatePrescriptionRequest is the body of POST /projects/:id/prescriptions.
// When resourceId is set, empty fields are copied from the library resource.
type CreatePrescriptionRequest struct {
	SpaceID     *uuid.UUID       `json:"spaceId"`
	CategoryID  *uuid.UUID       `json:"categoryId"`
	ResourceID  *uuid.UUID       `json:"resourceId"`
	Name        string           `json:"name" binding:"max=200"`
	Description string           `json:"description" binding:"max=5000"`
	Brand       string           `json:"brand" binding:"max=200"`
	Reference   string           `json:"reference" binding:"max=200"`
	Supplier    string           `json:"supplier" binding:"max=200"`
	ProductURL  string           `json:"productUrl" binding:"omitempty,url,max=2000"`
	Notes       string           `json:"notes" binding:"max=5000"`
	Quantity    *int             `json:"quantity" binding:"omitempty,gte=1"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	TotalPrice  *decimal.Decimal `json:"totalPrice"`
}

// UpdatePrescriptionRequest is the body of PATCH /prescriptions/:id.
// "spaceId": null unassigns the prescription.
type UpdatePrescriptionRequest struct {
	SpaceID     Optional[uuid.UUID] `json:"spaceId"`
	CategoryID  *uuid.UUID          `json:"categoryId"`
	Name        *string             `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string             `json:"description" binding:"omitempty,max=5000"`
	Brand       *string             `json:"brand" binding:"omitempty,max=200"`
	Reference   *string             `json:"reference" binding:"omitempty,max=200"`
	Supplier    *string             `json:"supplier" binding:"omitempty,max=200"`
	ProductURL  *string             `json:"productUrl" binding:"omitempty,max=2000"`
	Notes       *string             `json:"notes" binding:"omitempty,max=5000"`
	Quantity    *int                `json:"quantity" binding:"omitempty,gte=1"`
	UnitPrice   *decimal.Decimal    `json:"unitPrice"`
	TotalPrice  *decimal.Decimal    `json:"totalPrice"`
	Status      *string             `json:"status" binding:"omitempty,oneof=EN_COURS VALIDE COMMANDE LIVRE ANNULE"`
}

func (r UpdatePrescriptionRequest) toInput() prescriptionapp.UpdatePrescriptionInput {
	in := prescriptionapp.UpdatePrescriptionInput{
		SpaceID:     r.SpaceID.Value,
		ClearSpace:  r.SpaceID.Cleared(),
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Description: r.Description,
		Brand:       r.Brand,
		Reference:   r.Reference,
		Supplier:    r.Supplier,
		ProductURL:  r.ProductURL,
		Notes:       r.Notes,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		TotalPrice:  r.TotalPrice,
	}
	if r.Status != nil {
		s := prescription.Status(*r.Status)
		in.Status = &s
	}
	return in
}

// SetApprovalRequest is the body of PUT /prescriptions/:id/approval
type SetApprovalRequest struct {
	Status  string `json:"status" binding:"required,oneof=PENDING APPROVED REJECTED"`
	Comment string `json:"comment" binding:"max=2000"`
}

// AddCommentRequest is the body of POST /prescriptions/:id/comments
type AddCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
}

// PrescriptionWithDocuments is returned by a multipart PATCH
type PrescriptionWithDocuments struct {
	*prescriptionapp.PrescriptionResponse
	Documents []documentapp.DocumentResponse `json:"documents"`
}

// List godoc
// @Summary      List the prescriptions of a project
// @Tags         prescriptions
// @Produce      json
// @Param        id         path  string true  "Project ID"
// @Param        spaceId    query string false "Only this space"
// @Param        unassigned query bool   false "Only prescriptions without a space"
// @Param        status     query string false "EN_COURS, VALIDE, COMMANDE, LIVRE or ANNULE"
// @Success      200 {object} dto.ListResponse[prescription.PrescriptionResponse]
// @Security     BearerAuth
// @Router       /projects/{id}/prescriptions [get]
func (h *PrescriptionHandler) List(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	spaceID, ok := h.queryUUID(c, "spaceId")
	if !ok {
		return
	}
	filter := prescription.Filter{SpaceID: spaceID, Unassigned: queryBool(c, "unassigned")}
	if raw := c.Query("status"); raw != "" {
		s := prescription.Status(strings.ToUpper(raw))
		if !s.IsValid() {
			h.BadRequest(c, "Invalid status")
			return
		}
		filter.Status = &s
	}
	list, err := h.prescriptionService.List(c.Request.Context(), v, projectID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writeList(c, list)
}

// Create godoc
// @Summary      Add a prescription to a project
// @Description  Adds the line total to the project's spent budget in the same transaction.
// @Tags         prescriptions
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Project ID"
// @Param        request body CreatePrescriptionRequest true "Prescription"
// @Success      201 {object} prescription.PrescriptionResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/prescriptions [post]
func (h *PrescriptionHandler) Create(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req CreatePrescriptionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	p, err := h.prescriptionService.Create(c.Request.Context(), v, projectID, prescriptionapp.CreatePrescriptionInput{
		SpaceID:     req.SpaceID,
		CategoryID:  req.CategoryID,
		ResourceID:  req.ResourceID,
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		Reference:   req.Reference,
		Supplier:    req.Supplier,
		ProductURL:  req.ProductURL,
		Notes:       req.Notes,
		Quantity:    quantity,
		UnitPrice:   req.UnitPrice,
		TotalPrice:  req.TotalPrice,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// Get returns one prescription
// @Router /prescriptions/{id} [get]
func (h *PrescriptionHandler) Get(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.prescriptionService.Get(c.Request.Context(), v, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Update godoc
// @Summary      Update a prescription
// @Description  Accepts a JSON body, or a multipart form with the JSON in a "data" field
// @Description  and files in "files". Files are attached after the update is committed.
// @Tags         prescriptions
// @Accept       json,mpfd
// @Produce      json
// @Param        id      path string                    true "Prescription ID"
// @Param        request body UpdatePrescriptionRequest true "Changes"
// @Success      200 {object} prescription.PrescriptionResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /prescriptions/{id} [patch]
func (h *PrescriptionHandler) Update(c *gin.Context) {
	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		h.updateMultipart(c)
		return
	}
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req UpdatePrescriptionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.prescriptionService.Update(c.Request.Context(), v, id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

func (h *PrescriptionHandler) updateMultipart(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	form, ok := h.multipartForm(c)
	if !ok {
		return
	}

	var req UpdatePrescriptionRequest
	if data := formValue(form, "data"); data != "" {
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			h.BadRequest(c, "Invalid data field")
			return
		}
		if err := binding.Validator.ValidateStruct(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	in := req.toInput()
	var (
		p   *prescriptionapp.PrescriptionResponse
		err error
	)
	if in.IsEmpty() {
		p, err = h.prescriptionService.Get(ctx, v, id)
	} else {
		p, err = h.prescriptionService.Update(ctx, v, id, in)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	docs, err := attachAll(c, h.documentService, v, document.OwnerPrescription, id, formValue(form, "category"), uploadedFiles(form))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PrescriptionWithDocuments{PrescriptionResponse: p, Documents: docs})
}

// Delete removes a prescription and subtracts its total from the budget
// @Router /prescriptions/{id} [delete]
func (h *PrescriptionHandler) Delete(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.prescriptionService.Delete(c.Request.Context(), v, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RecalculateBudget godoc
// @Summary      Recompute a project's spent budget from its prescriptions
// @Tags         prescriptions
// @Produce      json
// @Success      200 {object} prescription.BudgetReport
// @Security     BearerAuth
// @Router       /projects/{id}/budget/recalculate [post]
func (h *PrescriptionHandler) RecalculateBudget(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	report, err := h.prescriptionService.RecalculateBudget(c.Request.Context(), v, projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ListApprovals returns the client decisions on a prescription
// @Router /prescriptions/{id}/approvals [get]
func (h *PrescriptionHandler) ListApprovals(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.prescriptionService.ListApprovals(c.Request.Context(), v, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writeList(c, list)
}

// SetApproval godoc
// @Summary      Approve or reject a prescription
// @Description  Only clients invited on the project may decide. A new decision replaces the previous one.
// @Tags         prescriptions
// @Accept       json
// @Produce      json
// @Param        request body SetApprovalRequest true "Decision"
// @Success      200 {object} prescription.ApprovalResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /prescriptions/{id}/approval [put]
func (h *PrescriptionHandler) SetApproval(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req SetApprovalRequest
	if !h.bindJSON(c, &req) {
		return
	}
	a, err := h.prescriptionService.SetApproval(c.Request.Context(), v, id, prescription.ApprovalStatus(req.Status), req.Comment)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// ListComments returns the comment thread, oldest first
// @Router /prescriptions/{id}/comments [get]
func (h *PrescriptionHandler) ListComments(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.prescriptionService.ListComments(c.Request.Context(), v, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writeList(c, list)
}

// AddComment posts to the thread
// @Router /prescriptions/{id}/comments [post]
func (h *PrescriptionHandler) AddComment(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req AddCommentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	comment, err := h.prescriptionService.AddComment(c.Request.Context(), v, id, req.Content)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, comment)
}

package handler

import (
	catalogapp "github.com/atelier/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CategoryHandler serves the category hierarchy and the prescription tags
type CategoryHandler struct {
	BaseHandler
	categoryService *catalogapp.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *catalogapp.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler:     NewBaseHandler(logger),
		categoryService: categoryService,
	}
}

// CategoryNameRequest names a new hierarchy node
type CategoryNameRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreatePrescriptionCategoryRequest is the body of POST /categories
type CreatePrescriptionCategoryRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

// List godoc
// @Summary      List prescription categories
// @Tags         categories
// @Produce      json
// @Success      200 {object} dto.ListResponse[catalog.PrescriptionCategoryResponse]
// @Security     BearerAuth
// @Router       /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	list, err := h.categoryService.ListPrescriptionCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writeList(c, list)
}

// Create godoc
// @Summary      Create a prescription category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        request body CreatePrescriptionCategoryRequest true "Category"
// @Success      201 {object} catalog.PrescriptionCategoryResponse
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreatePrescriptionCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cat, err := h.categoryService.CreatePrescriptionCategory(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cat)
}

// Tree returns the three-level hierarchy
// @Router /categories/tree [get]
func (h *CategoryHandler) Tree(c *gin.Context) {
	tree, err := h.categoryService.Tree(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}

// Import replaces the hierarchy with the built-in taxonomy
// @Router /categories/import [post]
func (h *CategoryHandler) Import(c *gin.Context) {
	result, err := h.categoryService.ImportTaxonomy(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CreateParent adds a top-level category
// @Router /categories/parents [post]
func (h *CategoryHandler) CreateParent(c *gin.Context) {
	var req CategoryNameRequest
	if !h.bindJSON(c, &req) {
		return
	}
	node, err := h.categoryService.CreateParent(c.Request.Context(), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, node)
}

// CreateSubCategory1 adds a second-level category under a parent
// @Router /categories/parents/{id}/subcategories [post]
func (h *CategoryHandler) CreateSubCategory1(c *gin.Context) {
	parentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req CategoryNameRequest
	if !h.bindJSON(c, &req) {
		return
	}
	node, err := h.categoryService.CreateSubCategory1(c.Request.Context(), parentID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, node)
}

// CreateSubCategory2 adds a leaf under a second-level category
// @Router /categories/subcategories/{id}/subcategories [post]
func (h *CategoryHandler) CreateSubCategory2(c *gin.Context) {
	sub1ID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req CategoryNameRequest
	if !h.bindJSON(c, &req) {
		return
	}
	node, err := h.categoryService.CreateSubCategory2(c.Request.Context(), sub1ID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, node)
}

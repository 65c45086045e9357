package handler

import (
	"net/http"

	libraryapp "github.com/atelier/backend/internal/application/library"
	"github.com/atelier/backend/internal/domain/library"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LibraryHandler serves the resource library and favorites
type LibraryHandler struct {
	BaseHandler
	resourceService *libraryapp.ResourceService
}

// NewLibraryHandler creates a new LibraryHandler
func NewLibraryHandler(resourceService *libraryapp.ResourceService, logger *zap.Logger) *LibraryHandler {
	return &LibraryHandler{
		BaseHandler:     NewBaseHandler(logger),
		resourceService: resourceService,
	}
}

// CreateResourceRequest is the body of POST /library/resources
type CreateResourceRequest struct {
	Name           string           `json:"name" binding:"required,min=1,max=300"`
	Description    string           `json:"description" binding:"max=5000"`
	Brand          string           `json:"brand" binding:"max=200"`
	Reference      string           `json:"reference" binding:"max=200"`
	ImageURL       string           `json:"imageUrl" binding:"omitempty,url"`
	ProductURL     string           `json:"productUrl" binding:"omitempty,url"`
	Price          *decimal.Decimal `json:"price"`
	PricePro       *decimal.Decimal `json:"pricePro"`
	Supplier       string           `json:"supplier" binding:"max=200"`
	CountryOrigin  string           `json:"countryOrigin" binding:"max=100"`
	Tags           []string         `json:"tags" binding:"max=30,dive,max=50"`
	CategoryID     uuid.UUID        `json:"categoryId" binding:"required"`
	SubCategory2ID *uuid.UUID       `json:"subCategory2Id"`
}

// UpdateResourceRequest is the body of PATCH /library/resources/:id.
// Absent fields are kept; "subCategory2Id": null detaches the resource.
type UpdateResourceRequest struct {
	Name           *string             `json:"name" binding:"omitempty,min=1,max=300"`
	Description    *string             `json:"description" binding:"omitempty,max=5000"`
	Brand          *string             `json:"brand" binding:"omitempty,max=200"`
	Reference      *string             `json:"reference" binding:"omitempty,max=200"`
	ImageURL       *string             `json:"imageUrl"`
	ProductURL     *string             `json:"productUrl"`
	Price          *decimal.Decimal    `json:"price"`
	PricePro       *decimal.Decimal    `json:"pricePro"`
	Supplier       *string             `json:"supplier" binding:"omitempty,max=200"`
	CountryOrigin  *string             `json:"countryOrigin" binding:"omitempty,max=100"`
	Tags           []string            `json:"tags" binding:"omitempty,max=30,dive,max=50"`
	CategoryID     *uuid.UUID          `json:"categoryId"`
	SubCategory2ID Optional[uuid.UUID] `json:"subCategory2Id"`
}

// SetFavoriteRequest is the body of POST /library/favorites
type SetFavoriteRequest struct {
	ResourceID uuid.UUID `json:"resourceId" binding:"required"`
	Status     string    `json:"status" binding:"required,oneof=PAS_OK OK J_ADORE"`
	Notes      string    `json:"notes" binding:"max=2000"`
}

// ListResources godoc
// @Summary      Search the resource library
// @Tags         library
// @Produce      json
// @Param        search          query string false "Accent-insensitive text over name, brand and reference"
// @Param        subCategory2Id  query string false "Leaf category"
// @Param        subCategory1Id  query string false "Second-level category"
// @Param        parentId        query string false "Top-level category"
// @Param        categoryId      query string false "Prescription category"
// @Param        tag             query string false "Tag"
// @Param        favoritesOnly   query bool   false "Only the caller's favorites"
// @Param        page            query int    false "Page"
// @Param        pageSize        query int    false "Page size"
// @Success      200 {object} dto.ListResponse[library.ResourceResponse]
// @Security     BearerAuth
// @Router       /library/resources [get]
func (h *LibraryHandler) ListResources(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	var page dto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}
	page.Normalize()

	in := libraryapp.ListResourcesInput{
		Search:        c.Query("search"),
		Tag:           c.Query("tag"),
		FavoritesOnly: queryBool(c, "favoritesOnly"),
		Page:          page.Page,
		PageSize:      page.PageSize,
	}
	for name, dst := range map[string]**uuid.UUID{
		"subCategory2Id": &in.SubCategory2ID,
		"subCategory1Id": &in.SubCategory1ID,
		"parentId":       &in.ParentID,
		"categoryId":     &in.CategoryID,
	} {
		id, ok := h.queryUUID(c, name)
		if !ok {
			return
		}
		*dst = id
	}

	result, err := h.resourceService.List(c.Request.Context(), v.UserID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.FromPaginated(result))
}

// GetResource returns one resource
// @Router /library/resources/{id} [get]
func (h *LibraryHandler) GetResource(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.resourceService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// CreateResource godoc
// @Summary      Add a resource to the library
// @Tags         library
// @Accept       json
// @Produce      json
// @Param        request body CreateResourceRequest true "Resource"
// @Success      201 {object} library.ResourceResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /library/resources [post]
func (h *LibraryHandler) CreateResource(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	var req CreateResourceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	r, err := h.resourceService.Create(c.Request.Context(), v.UserID, libraryapp.CreateResourceInput{
		Name:           req.Name,
		Description:    req.Description,
		Brand:          req.Brand,
		Reference:      req.Reference,
		ImageURL:       req.ImageURL,
		ProductURL:     req.ProductURL,
		Price:          req.Price,
		PricePro:       req.PricePro,
		Supplier:       req.Supplier,
		CountryOrigin:  req.CountryOrigin,
		Tags:           req.Tags,
		CategoryID:     req.CategoryID,
		SubCategory2ID: req.SubCategory2ID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, r)
}

// UpdateResource applies a partial update
// @Router /library/resources/{id} [patch]
func (h *LibraryHandler) UpdateResource(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateResourceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	r, err := h.resourceService.Update(c.Request.Context(), id, libraryapp.UpdateResourceInput{
		Name:              req.Name,
		Description:       req.Description,
		Brand:             req.Brand,
		Reference:         req.Reference,
		ImageURL:          req.ImageURL,
		ProductURL:        req.ProductURL,
		Price:             req.Price,
		PricePro:          req.PricePro,
		Supplier:          req.Supplier,
		CountryOrigin:     req.CountryOrigin,
		Tags:              req.Tags,
		CategoryID:        req.CategoryID,
		SubCategory2ID:    req.SubCategory2ID.Value,
		ClearSubCategory2: req.SubCategory2ID.Cleared(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// DeleteResource removes a resource and the favorites pointing at it
// @Router /library/resources/{id} [delete]
func (h *LibraryHandler) DeleteResource(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.resourceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ImportResources godoc
// @Summary      Bulk import resources from CSV
// @Tags         library
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file"
// @Success      200 {object} library.ImportResult
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /library/resources/import [post]
func (h *LibraryHandler) ImportResources(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A CSV file is required in the \"file\" field")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()

	result, err := h.resourceService.ImportCSV(c.Request.Context(), v.UserID, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListFavorites returns the caller's favorites
// @Router /library/favorites [get]
func (h *LibraryHandler) ListFavorites(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	var status *library.FavoriteStatus
	if raw := c.Query("status"); raw != "" {
		s := library.FavoriteStatus(raw)
		status = &s
	}
	list, err := h.resourceService.ListFavorites(c.Request.Context(), v.UserID, status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writeList(c, list)
}

// SetFavorite creates or replaces the caller's favorite
// @Router /library/favorites [post]
func (h *LibraryHandler) SetFavorite(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	var req SetFavoriteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	fav, err := h.resourceService.SetFavorite(c.Request.Context(), v.UserID, req.ResourceID,
		library.FavoriteStatus(req.Status), req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fav)
}

// RemoveFavorite deletes the caller's favorite on a resource
// @Router /library/favorites/{resourceId} [delete]
func (h *LibraryHandler) RemoveFavorite(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	resourceID, ok := h.pathID(c, "resourceId")
	if !ok {
		return
	}
	if err := h.resourceService.RemoveFavorite(c.Request.Context(), v.UserID, resourceID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

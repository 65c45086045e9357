package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	documentapp "github.com/atelier/backend/internal/application/document"
	"github.com/atelier/backend/internal/domain/document"
	"github.com/atelier/backend/internal/domain/project"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxMultipartMemory is how much of a multipart body is buffered in memory
// before spilling parts to temporary files
const maxMultipartMemory = 8 << 20

// DocumentHandler serves file attachments of projects, spaces and
// prescriptions
type DocumentHandler struct {
	BaseHandler
	documentService *documentapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *documentapp.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     NewBaseHandler(logger),
		documentService: documentService,
	}
}

// ListProjectFiles godoc
// @Summary      List files attached to a project
// @Tags         files
// @Produce      json
// @Success      200 {object} dto.ListResponse[document.DocumentResponse]
// @Security     BearerAuth
// @Router       /projects/{id}/files [get]
func (h *DocumentHandler) ListProjectFiles(c *gin.Context) {
	h.list(c, document.OwnerProject)
}

// UploadProjectFiles godoc
// @Summary      Upload files to a project
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        files    formData file   true  "One or more files"
// @Param        category formData string false "PLAN, PHOTO, DEVIS, FACTURE, FICHE_TECHNIQUE or AUTRE"
// @Success      201 {object} dto.ListResponse[document.DocumentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/files [post]
func (h *DocumentHandler) UploadProjectFiles(c *gin.Context) {
	h.upload(c, document.OwnerProject)
}

// ListSpaceFiles lists files attached to a space
// @Router /spaces/{id}/files [get]
func (h *DocumentHandler) ListSpaceFiles(c *gin.Context) {
	h.list(c, document.OwnerSpace)
}

// UploadSpaceFiles uploads files to a space
// @Router /spaces/{id}/files [post]
func (h *DocumentHandler) UploadSpaceFiles(c *gin.Context) {
	h.upload(c, document.OwnerSpace)
}

// ListPrescriptionDocuments lists files attached to a prescription
// @Router /prescriptions/{id}/documents [get]
func (h *DocumentHandler) ListPrescriptionDocuments(c *gin.Context) {
	h.list(c, document.OwnerPrescription)
}

// UploadPrescriptionDocuments uploads files to a prescription
// @Router /prescriptions/{id}/documents [post]
func (h *DocumentHandler) UploadPrescriptionDocuments(c *gin.Context) {
	h.upload(c, document.OwnerPrescription)
}

// Delete removes a file
// @Router /files/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.documentService.Detach(c.Request.Context(), v, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *DocumentHandler) list(c *gin.Context, ownerType document.OwnerType) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	ownerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.documentService.List(c.Request.Context(), v, ownerType, ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writeList(c, list)
}

func (h *DocumentHandler) upload(c *gin.Context, ownerType document.OwnerType) {
	v, ok := h.viewer(c)
	if !ok {
		return
	}
	ownerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	form, ok := h.multipartForm(c)
	if !ok {
		return
	}
	files := uploadedFiles(form)
	if len(files) == 0 {
		h.BadRequest(c, "No file was uploaded")
		return
	}
	docs, err := attachAll(c, h.documentService, v, ownerType, ownerID, formValue(form, "category"), files)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"items": docs, "total": len(docs)})
}

// multipartForm parses the request body, answering 400 when it is not a
// multipart form
func (h *BaseHandler) multipartForm(c *gin.Context) (*multipart.Form, bool) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Request body exceeds maximum allowed size")
			return nil, false
		}
		h.BadRequest(c, "Expected a multipart/form-data body")
		return nil, false
	}
	return c.Request.MultipartForm, true
}

// uploadedFiles returns the parts sent as "files", or as "file"
func uploadedFiles(form *multipart.Form) []*multipart.FileHeader {
	if files := form.File["files"]; len(files) > 0 {
		return files
	}
	return form.File["file"]
}

func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// attachAll stores files one after the other and stops at the first
// rejected one. Files stored before the failure are kept.
func attachAll(
	c *gin.Context,
	svc *documentapp.DocumentService,
	v project.Viewer,
	ownerType document.OwnerType,
	ownerID uuid.UUID,
	category string,
	files []*multipart.FileHeader,
) ([]documentapp.DocumentResponse, error) {
	docs := make([]documentapp.DocumentResponse, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return docs, err
		}
		doc, err := svc.Attach(c.Request.Context(), v, documentapp.AttachInput{
			OwnerType: ownerType,
			OwnerID:   ownerID,
			Category:  document.Category(category),
			FileName:  fh.Filename,
			Size:      fh.Size,
			Body:      f,
		})
		_ = f.Close()
		if err != nil {
			return docs, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

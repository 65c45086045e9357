package document

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	appproject "github.com/atelier/backend/internal/application/project"
	"github.com/atelier/backend/internal/domain/document"
	"github.com/atelier/backend/internal/domain/prescription"
	"github.com/atelier/backend/internal/domain/project"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/telemetry"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AttachInput is one uploaded file
type AttachInput struct {
	OwnerType document.OwnerType
	OwnerID   uuid.UUID
	Category  document.Category
	FileName  string
	Size      int64
	Body      io.ReadSeeker
}

// DocumentResponse is the API view of a stored file
type DocumentResponse struct {
	ID          uuid.UUID          `json:"id"`
	OwnerType   document.OwnerType `json:"ownerType"`
	OwnerID     uuid.UUID          `json:"ownerId"`
	ProjectID   uuid.UUID          `json:"projectId"`
	Category    document.Category  `json:"category"`
	FileName    string             `json:"fileName"`
	ContentType string             `json:"contentType"`
	Size        int64              `json:"size"`
	URL         string             `json:"url"`
	UploadedBy  uuid.UUID          `json:"uploadedBy"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// ToDocumentResponse converts a document, URL included
func ToDocumentResponse(d *document.Document) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID,
		OwnerType:   d.OwnerType,
		OwnerID:     d.OwnerID,
		ProjectID:   d.ProjectID,
		Category:    d.Category,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        d.Size,
		URL:         d.URL,
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
	}
}

// DocumentService attaches files to projects, spaces and prescriptions
type DocumentService struct {
	documents     document.Repository
	spaces        project.SpaceRepository
	prescriptions prescription.PrescriptionRepository
	access        *appproject.AccessChecker
	store         ObjectStorage
	metrics       *telemetry.BusinessMetrics
	logger        *zap.Logger
}

// Deps bundles the collaborators of DocumentService
type Deps struct {
	Documents     document.Repository
	Spaces        project.SpaceRepository
	Prescriptions prescription.PrescriptionRepository
	Access        *appproject.AccessChecker
	Store         ObjectStorage
	Metrics       *telemetry.BusinessMetrics
	Logger        *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(deps Deps) *DocumentService {
	return &DocumentService{
		documents:     deps.Documents,
		spaces:        deps.Spaces,
		prescriptions: deps.Prescriptions,
		access:        deps.Access,
		store:         deps.Store,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
	}
}

// Attach stores the file body, then its metadata row. When the row cannot be
// written the body is removed again.
func (s *DocumentService) Attach(ctx context.Context, v project.Viewer, in AttachInput) (resp *DocumentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "Attach")
	defer func() { telemetry.EndSpan(span, err) }()

	projectID, err := s.projectOf(ctx, in.OwnerType, in.OwnerID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.access.Require(ctx, projectID, v, project.AccessOwner); err != nil {
		return nil, err
	}
	if in.Body == nil {
		return nil, shared.NewValidationError("File is empty")
	}
	contentType, err := sniff(in.Body)
	if err != nil {
		return nil, err
	}

	doc, err := document.NewDocument(document.Upload{
		OwnerType:   in.OwnerType,
		OwnerID:     in.OwnerID,
		ProjectID:   projectID,
		Category:    in.Category,
		FileName:    in.FileName,
		ContentType: contentType,
		Size:        in.Size,
		UploadedBy:  v.UserID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, doc.StoragePath, in.Body, doc.Size, doc.ContentType); err != nil {
		return nil, fmt.Errorf("store %s: %w", doc.StoragePath, err)
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		if delErr := s.store.Delete(ctx, doc.StoragePath); delErr != nil {
			s.metrics.RecordOrphanedObject(ctx, 1)
			logger.Enrich(ctx, s.logger).Warn("Failed to remove stored file after metadata error",
				zap.String("storage_path", doc.StoragePath),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	s.metrics.RecordUpload(ctx, string(doc.OwnerType), doc.Size)
	logger.Enrich(ctx, s.logger).Info("Document attached",
		zap.String("document_id", doc.ID.String()),
		zap.String("owner_type", string(doc.OwnerType)),
		zap.String("content_type", doc.ContentType),
		zap.Int64("size", doc.Size),
	)
	doc.URL = s.store.URL(doc.StoragePath)
	out := ToDocumentResponse(doc)
	return &out, nil
}

// List returns the files attached to one owner
func (s *DocumentService) List(ctx context.Context, v project.Viewer, ownerType document.OwnerType, ownerID uuid.UUID) ([]DocumentResponse, error) {
	projectID, err := s.projectOf(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.access.Require(ctx, projectID, v, project.AccessMember); err != nil {
		return nil, err
	}
	list, err := s.documents.FindByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentResponse, 0, len(list))
	for _, d := range list {
		d.URL = s.store.URL(d.StoragePath)
		out = append(out, ToDocumentResponse(d))
	}
	return out, nil
}

// Detach deletes the metadata row, then the stored body. A storage failure
// is logged and counted only.
func (s *DocumentService) Detach(ctx context.Context, v project.Viewer, id uuid.UUID) error {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if _, _, err := s.access.Require(ctx, doc.ProjectID, v, project.AccessOwner); err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}
	appproject.PurgeObjects(ctx, s.store, []*document.Document{doc}, s.metrics, s.logger)
	logger.Enrich(ctx, s.logger).Info("Document detached", zap.String("document_id", id.String()))
	return nil
}

// projectOf resolves the project an owner belongs to
func (s *DocumentService) projectOf(ctx context.Context, ownerType document.OwnerType, ownerID uuid.UUID) (uuid.UUID, error) {
	switch ownerType {
	case document.OwnerProject:
		return ownerID, nil
	case document.OwnerSpace:
		space, err := s.spaces.FindByID(ctx, ownerID)
		if err != nil {
			return uuid.Nil, err
		}
		return space.ProjectID, nil
	case document.OwnerPrescription:
		p, err := s.prescriptions.FindByID(ctx, ownerID)
		if err != nil {
			return uuid.Nil, err
		}
		return p.ProjectID, nil
	default:
		return uuid.Nil, shared.NewValidationError("Unknown document owner type")
	}
}

// sniff detects the content type from the leading bytes and rewinds body
func sniff(body io.ReadSeeker) (string, error) {
	mt, err := mimetype.DetectReader(body)
	if err != nil {
		return "", shared.WrapDomainError(shared.CodeValidation, "Could not read the uploaded file", err)
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	base, _, _ := strings.Cut(mt.String(), ";")
	return strings.TrimSpace(base), nil
}

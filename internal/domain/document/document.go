package document

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OwnerType is the kind of entity a document is attached to
type OwnerType string

const (
	OwnerProject      OwnerType = "project"
	OwnerSpace        OwnerType = "space"
	OwnerPrescription OwnerType = "prescription"
)

// IsValid reports whether t is a known owner type
func (t OwnerType) IsValid() bool {
	return t == OwnerProject || t == OwnerSpace || t == OwnerPrescription
}

// MaxSize is the upload ceiling for the owner type, in bytes
func (t OwnerType) MaxSize() int64 {
	if t == OwnerPrescription {
		return 10 << 20
	}
	return 50 << 20
}

// Category classifies what a document is about
type Category string

const (
	CategoryPlan           Category = "PLAN"
	CategoryPhoto          Category = "PHOTO"
	CategoryDevis          Category = "DEVIS"
	CategoryFacture        Category = "FACTURE"
	CategoryFicheTechnique Category = "FICHE_TECHNIQUE"
	CategoryAutre          Category = "AUTRE"
)

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	switch c {
	case CategoryPlan, CategoryPhoto, CategoryDevis, CategoryFacture, CategoryFicheTechnique, CategoryAutre:
		return true
	}
	return false
}

// AllowedContentTypes is the upload allow-list, matched against the sniffed type.
// SVG is excluded since it can carry scripts.
var AllowedContentTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/webp":         true,
	"image/gif":          true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/plain": true,
	"text/csv":   true,
}

// IsAllowedContentType checks the allow-list, ignoring parameters like charset
func IsAllowedContentType(contentType string) bool {
	base, _, _ := strings.Cut(contentType, ";")
	return AllowedContentTypes[strings.ToLower(strings.TrimSpace(base))]
}

// Document is the metadata row of a stored file
type Document struct {
	ID          uuid.UUID
	OwnerType   OwnerType
	OwnerID     uuid.UUID
	ProjectID   uuid.UUID
	Category    Category
	FileName    string
	StoragePath string
	ContentType string
	Size        int64
	UploadedBy  uuid.UUID
	CreatedAt   time.Time

	// URL is filled from storage when returned to callers
	URL string
}

// Upload describes an incoming file before it is stored
type Upload struct {
	OwnerType   OwnerType
	OwnerID     uuid.UUID
	ProjectID   uuid.UUID
	Category    Category
	FileName    string
	ContentType string
	Size        int64
	UploadedBy  uuid.UUID
}

// Validate applies owner, category, type and size rules
func (u Upload) Validate() error {
	if !u.OwnerType.IsValid() {
		return shared.NewValidationError("Unknown document owner type")
	}
	if u.OwnerID == uuid.Nil || u.ProjectID == uuid.Nil {
		return shared.NewValidationError("Document owner is required")
	}
	if u.Category != "" && !u.Category.IsValid() {
		return shared.NewValidationError("Unknown document category " + string(u.Category))
	}
	if strings.TrimSpace(u.FileName) == "" {
		return shared.NewValidationError("File name is required")
	}
	if u.Size <= 0 {
		return shared.NewValidationError("File is empty")
	}
	if u.Size > u.OwnerType.MaxSize() {
		return shared.NewValidationError(fmt.Sprintf("File exceeds the %d MB limit", u.OwnerType.MaxSize()>>20))
	}
	if !IsAllowedContentType(u.ContentType) {
		return shared.NewValidationError("File type " + u.ContentType + " is not allowed")
	}
	return nil
}

// NewDocument validates the upload and assigns its storage path
func NewDocument(u Upload) (*Document, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	category := u.Category
	if category == "" {
		category = CategoryAutre
	}
	id := uuid.New()
	name := SanitizeFileName(u.FileName)
	return &Document{
		ID:          id,
		OwnerType:   u.OwnerType,
		OwnerID:     u.OwnerID,
		ProjectID:   u.ProjectID,
		Category:    category,
		FileName:    name,
		StoragePath: StoragePath(u.OwnerType, u.OwnerID, id, name),
		ContentType: u.ContentType,
		Size:        u.Size,
		UploadedBy:  u.UploadedBy,
		CreatedAt:   shared.Timestamp(),
	}, nil
}

// StoragePath returns uploads/<owner-kind>s/<owner-id>/<generated-name><ext>
func StoragePath(ownerType OwnerType, ownerID, fileID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) > 10 {
		ext = ""
	}
	return path.Join("uploads", string(ownerType)+"s", ownerID.String(), fileID.String()+ext)
}

// SanitizeFileName keeps the base name and drops control and path characters
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '/' || r == '"' {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." {
		return "file"
	}
	if len(name) > 255 {
		ext := filepath.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		cut := 255 - len(ext)
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut] + ext
	}
	return name
}

package prescription

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ApprovalStatus is a client's decision on a prescription
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// IsValid reports whether s is a known approval status
func (s ApprovalStatus) IsValid() bool {
	return s == ApprovalPending || s == ApprovalApproved || s == ApprovalRejected
}

// Approval is unique per (PrescriptionID, UserID) and overwritten in place
type Approval struct {
	ID             uuid.UUID
	PrescriptionID uuid.UUID
	UserID         uuid.UUID
	Status         ApprovalStatus
	Comment        string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// UserName is filled by listings only
	UserName string
}

// NewApproval builds the row to upsert
func NewApproval(prescriptionID, userID uuid.UUID, status ApprovalStatus, comment string) (*Approval, error) {
	if !status.IsValid() {
		return nil, shared.NewValidationError("Status must be one of PENDING, APPROVED, REJECTED")
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > 2000 {
		return nil, shared.NewValidationError("Comment cannot exceed 2000 characters")
	}
	now := shared.Timestamp()
	return &Approval{
		ID:             uuid.New(),
		PrescriptionID: prescriptionID,
		UserID:         userID,
		Status:         status,
		Comment:        comment,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Comment is an append-only message on a prescription
type Comment struct {
	ID             uuid.UUID
	PrescriptionID uuid.UUID
	Content        string
	CreatedBy      uuid.UUID
	CreatedAt      time.Time

	// AuthorName is filled by listings only
	AuthorName string
}

// MaxCommentLength bounds comment content
const MaxCommentLength = 5000

// NewComment validates and builds a comment
func NewComment(prescriptionID, createdBy uuid.UUID, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, shared.NewValidationError("Comment cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, shared.NewValidationError("Comment is too long")
	}
	return &Comment{
		ID:             uuid.New(),
		PrescriptionID: prescriptionID,
		Content:        content,
		CreatedBy:      createdBy,
		CreatedAt:      shared.Timestamp(),
	}, nil
}

package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atelier/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the coarse permission level of a user
type Role string

const (
	RoleDesigner Role = "DESIGNER"
	RoleClient   Role = "CLIENT"
	RoleAdmin    Role = "ADMIN"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleDesigner, RoleClient, RoleAdmin:
		return true
	}
	return false
}

// CanManageCatalog reports whether the role may write library and category data
func (r Role) CanManageCatalog() bool {
	return r == RoleDesigner || r == RoleAdmin
}

// bcryptCost is a var so tests can lower it.
var bcryptCost = bcrypt.DefaultCost

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is an agency member or a client with access to one or more projects
type User struct {
	shared.BaseAggregateRoot
	Email        string
	Name         string
	Role         Role
	PasswordHash string
	LastLoginAt  *time.Time
}

// NewUser creates a user with a hashed password
func NewUser(email, name, password string, role Role) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return nil, shared.NewValidationError("Name cannot exceed 200 characters")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("Invalid role")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              name,
		Role:              role,
		PasswordHash:      hash,
	}, nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}
	u.PasswordHash = hash
	u.Touch()
	u.IncrementVersion()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin() {
	now := shared.Timestamp()
	u.LastLoginAt = &now
}

// IsAdmin reports whether the user bypasses ownership checks
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewValidationError("Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewValidationError("Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewValidationError("Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("Password must be at least 8 characters")
	}
	// bcrypt ignores input past 72 bytes
	if len(password) > 72 {
		return shared.NewValidationError("Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

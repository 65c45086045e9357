package models

import (
	"time"

	"github.com/atelier/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Email        string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name         string        `gorm:"type:varchar(200);not null"`
	Role         identity.Role `gorm:"type:varchar(20);not null;default:'DESIGNER'"`
	PasswordHash string        `gorm:"type:varchar(255);not null"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		Name:              m.Name,
		Role:              m.Role,
		PasswordHash:      m.PasswordHash,
		LastLoginAt:       m.LastLoginAt,
	}
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
		LastLoginAt:  u.LastLoginAt,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}

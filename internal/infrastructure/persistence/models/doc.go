// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model converts with ToDomain and
// a <Name>ModelFromDomain constructor.
//
// Files follow the bounded contexts:
//   - base.go: shared columns and column types
//   - identity.go: users
//   - catalog.go: category hierarchy and prescription categories
//   - library.go: resources and favorites
//   - project.go: projects, spaces and client memberships
//   - prescription.go: prescriptions, approvals and comments
//   - document.go: uploaded file metadata
package models

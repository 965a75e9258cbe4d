package repository

import (
	"context"
	"errors"

	"docindex/internal/model"
)

// ErrVersionConflict is returned by Update when the row exists but its
// current version no longer matches the expected one.
var ErrVersionConflict = errors.New("document version conflict")

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations. Missing rows are
// reported as sql.ErrNoRows so callers can translate uniformly.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	// The caller provides all fields including ID and timestamps.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// Update performs a conditional write: the row is rewritten only if its
	// stored version equals expectedVersion, and the new version is
	// expectedVersion+1. Returns ErrVersionConflict when the row exists at a
	// different version, sql.ErrNoRows when it does not exist.
	Update(ctx context.Context, id string, expectedVersion int, doc *model.Document) (*model.Document, error)

	// Delete removes a document by ID. Returns sql.ErrNoRows if no row was
	// deleted, so double-deletes stay observable.
	Delete(ctx context.Context, id string) error

	// ListScope returns every document reachable through the given access
	// path, ordered by created_at DESC, id DESC. Residual filtering and
	// pagination are the search engine's job.
	ListScope(ctx context.Context, scope Scope) ([]model.Document, error)
}

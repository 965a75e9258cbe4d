package postgres

import (
	"context"
	"database/sql"
	"errors"

	"docindex/internal/model"
	"docindex/internal/repository"
)

const documentColumns = `id, owner_user_id, organization_id, file_name, file_extension,
		location, category, sensitivity, expiry_date, version, status, created_at, updated_at`

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Postgres reads are strongly consistent, so both consistency levels of the
// Scope contract are served by the same queries.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

func scanDocument(row interface{ Scan(dest ...any) error }) (*model.Document, error) {
	var d model.Document
	var category sql.NullString
	var expiry sql.NullTime
	if err := row.Scan(
		&d.ID,
		&d.OwnerUserID,
		&d.OrganizationID,
		&d.FileName,
		&d.FileExtension,
		&d.Location,
		&category,
		&d.Sensitivity,
		&expiry,
		&d.Version,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if category.Valid {
		d.Category = category.String
	}
	if expiry.Valid {
		t := expiry.Time
		d.ExpiryDate = &t
	}
	return &d, nil
}

func nullCategory(c string) sql.NullString {
	return sql.NullString{String: c, Valid: c != ""}
}

func nullExpiry(d *model.Document) sql.NullTime {
	if d.ExpiryDate == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *d.ExpiryDate, Valid: true}
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, owner_user_id, organization_id, file_name, file_extension,
			location, category, sensitivity, expiry_date, version, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.OwnerUserID,
		doc.OrganizationID,
		doc.FileName,
		doc.FileExtension,
		doc.Location,
		nullCategory(doc.Category),
		doc.Sensitivity,
		nullExpiry(doc),
		doc.Version,
		doc.Status,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// Update rewrites the mutable columns only when the stored version still
// equals expectedVersion. Owner and organization are never touched.
func (r *DocumentPostgres) Update(ctx context.Context, id string, expectedVersion int, doc *model.Document) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET file_name = $3, file_extension = $4, location = $5, category = $6,
			sensitivity = $7, expiry_date = $8, status = $9,
			version = version + 1, updated_at = $10
		WHERE id = $1 AND version = $2
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		id,
		expectedVersion,
		doc.FileName,
		doc.FileExtension,
		doc.Location,
		nullCategory(doc.Category),
		doc.Sensitivity,
		nullExpiry(doc),
		doc.Status,
		doc.UpdatedAt,
	)
	out, err := scanDocument(row)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	// Zero rows: either the document is gone or another writer won the race.
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrVersionConflict
	}
	return nil, sql.ErrNoRows
}

// Delete removes a document by ID; missing rows surface as sql.ErrNoRows.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListScope returns the full ordered scope for one of the three access paths.
// Each path maps to an index created by the migration package.
func (r *DocumentPostgres) ListScope(ctx context.Context, scope repository.Scope) ([]model.Document, error) {
	const base = `
		SELECT ` + documentColumns + `
		FROM documents
	`
	const order = ` ORDER BY created_at DESC, id DESC`

	var rows *sql.Rows
	var err error
	switch scope.Path {
	case repository.PathOrgLocation:
		rows, err = r.db.QueryContext(ctx,
			base+`WHERE organization_id = $1 AND location = $2`+order,
			scope.OrganizationID, scope.Location)
	case repository.PathOrgOwner:
		rows, err = r.db.QueryContext(ctx,
			base+`WHERE organization_id = $1 AND owner_user_id = $2`+order,
			scope.OrganizationID, scope.OwnerUserID)
	default:
		rows, err = r.db.QueryContext(ctx,
			base+`WHERE organization_id = $1`+order,
			scope.OrganizationID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

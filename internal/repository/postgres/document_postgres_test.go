package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"docindex/internal/model"
	"docindex/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var docColumns = []string{
	"id", "owner_user_id", "organization_id", "file_name", "file_extension",
	"location", "category", "sensitivity", "expiry_date", "version", "status",
	"created_at", "updated_at",
}

func docRow(d *model.Document) *sqlmock.Rows {
	var category any
	if d.Category != "" {
		category = d.Category
	}
	var expiry any
	if d.ExpiryDate != nil {
		expiry = *d.ExpiryDate
	}
	return sqlmock.NewRows(docColumns).AddRow(
		d.ID, d.OwnerUserID, d.OrganizationID, d.FileName, d.FileExtension,
		d.Location, category, d.Sensitivity, expiry, d.Version, string(d.Status),
		d.CreatedAt, d.UpdatedAt,
	)
}

func sampleDoc() *model.Document {
	now := time.Now().UTC()
	return &model.Document{
		ID:             "test-uuid",
		OwnerUserID:    "user-1",
		OrganizationID: "org-1",
		FileName:       "tenancy.pdf",
		FileExtension:  ".pdf",
		Location:       "croydon",
		Category:       "Legal",
		Sensitivity:    3,
		Version:        1,
		Status:         model.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	doc := sampleDoc()
	mock.ExpectQuery("INSERT INTO documents").
		WillReturnRows(docRow(doc))

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, doc.ID, result.ID)
	assert.Equal(t, 1, result.Version)
	assert.Equal(t, "croydon", result.Location)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("test-uuid").
			WillReturnRows(docRow(sampleDoc()))

		doc, err := repo.FindByID(ctx, "test-uuid")

		assert.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "test-uuid", doc.ID)
		assert.Equal(t, "Legal", doc.Category)
		assert.Nil(t, doc.ExpiryDate)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("conditional write succeeds", func(t *testing.T) {
		updated := sampleDoc()
		updated.Category = "Housing"
		updated.Version = 2

		mock.ExpectQuery("UPDATE documents").
			WillReturnRows(docRow(updated))

		out, err := repo.Update(ctx, "test-uuid", 1, updated)

		assert.NoError(t, err)
		require.NotNil(t, out)
		assert.Equal(t, 2, out.Version)
	})

	t.Run("version conflict when row exists at another version", func(t *testing.T) {
		mock.ExpectQuery("UPDATE documents").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("test-uuid").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		out, err := repo.Update(ctx, "test-uuid", 1, sampleDoc())

		assert.ErrorIs(t, err, repository.ErrVersionConflict)
		assert.Nil(t, out)
	})

	t.Run("not found when row is gone", func(t *testing.T) {
		mock.ExpectQuery("UPDATE documents").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		out, err := repo.Update(ctx, "missing", 1, sampleDoc())

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, out)
	})
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM documents WHERE id = ?").
			WithArgs("test-uuid").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "test-uuid"))
	})

	t.Run("missing row is observable", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, "missing"), sql.ErrNoRows)
	})
}

func TestDocumentPostgres_ListScope(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("org path", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents\\s+WHERE organization_id = (.+) ORDER BY created_at DESC, id DESC").
			WithArgs("org-1").
			WillReturnRows(docRow(sampleDoc()))

		docs, err := repo.ListScope(ctx, repository.Scope{
			Path:           repository.PathOrg,
			OrganizationID: "org-1",
		})

		assert.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("org+owner path", func(t *testing.T) {
		mock.ExpectQuery("WHERE organization_id = (.+) AND owner_user_id = (.+) ORDER BY").
			WithArgs("org-1", "user-1").
			WillReturnRows(docRow(sampleDoc()))

		docs, err := repo.ListScope(ctx, repository.Scope{
			Path:           repository.PathOrgOwner,
			OrganizationID: "org-1",
			OwnerUserID:    "user-1",
		})

		assert.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("org+location path", func(t *testing.T) {
		mock.ExpectQuery("WHERE organization_id = (.+) AND location = (.+) ORDER BY").
			WithArgs("org-1", "croydon").
			WillReturnRows(docRow(sampleDoc()))

		docs, err := repo.ListScope(ctx, repository.Scope{
			Path:           repository.PathOrgLocation,
			OrganizationID: "org-1",
			Location:       "croydon",
		})

		assert.NoError(t, err)
		assert.Len(t, docs, 1)
		assert.Equal(t, "croydon", docs[0].Location)
	})
}

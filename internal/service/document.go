package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docindex/internal/apperr"
	"docindex/internal/authz"
	"docindex/internal/config"
	"docindex/internal/model"
	"docindex/internal/repository"
	"docindex/internal/semantic"
	"docindex/internal/storage"
)

// maxUpdateRetries bounds the internal retry loop for unpinned updates that
// lose an optimistic-concurrency race. Pinned updates are never retried.
const maxUpdateRetries = 2

// presignExpiry bounds the lifetime of presigned content download URLs.
const presignExpiry = 15 * time.Minute

var errNoArchive = errors.New("no content archive configured")

// DocumentService defines the use cases for managing document metadata.
// Every operation takes the caller's UserContext; authorization is enforced
// here and re-checked by the guard on all result sets.
type DocumentService interface {
	// Create validates invariants, assigns an id, and persists a new document
	// at version 1. Optional content is archived and indexed for retrieval.
	Create(ctx context.Context, in model.CreateDocumentInput, user model.UserContext) (*model.Document, error)

	// Update merges the changed fields, re-validates the merged record, and
	// performs a conditional write that increments the version by exactly 1.
	Update(ctx context.Context, id string, in model.UpdateDocumentInput, user model.UserContext) (*model.Document, error)

	// Delete removes the document; deleting a missing id reports not-found so
	// double-deletes stay observable.
	Delete(ctx context.Context, id string, user model.UserContext) error

	// Get returns a single document the caller is allowed to access.
	Get(ctx context.Context, id string, user model.UserContext) (*model.Document, error)

	// GetContent streams the archived content of a document the caller is
	// allowed to access. The caller must close the reader.
	GetContent(ctx context.Context, id string, user model.UserContext) (io.ReadCloser, storage.ObjectInfo, error)

	// ContentURL returns a time-limited download URL for the archived content.
	ContentURL(ctx context.Context, id string, user model.UserContext) (string, error)
}

// documentService is a concrete implementation of DocumentService.
// archive and index are optional collaborators: the metadata record is
// canonical, and failures past the committed write are logged, not returned.
type documentService struct {
	repo    repository.DocumentRepository
	archive storage.Storage
	index   semantic.Indexer
	catalog config.Catalog
	now     func() time.Time
}

// NewDocumentService constructs a new DocumentService. archive and index may
// be nil when content archival / semantic indexing are not configured.
func NewDocumentService(repo repository.DocumentRepository, archive storage.Storage, index semantic.Indexer, catalog config.Catalog) DocumentService {
	return &documentService{
		repo:    repo,
		archive: archive,
		index:   index,
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *documentService) Create(ctx context.Context, in model.CreateDocumentInput, user model.UserContext) (*model.Document, error) {
	if !user.Complete() {
		return nil, apperr.Forbidden("incomplete user context")
	}
	if in.OrganizationID != user.OrganizationID {
		return nil, apperr.CrossOrg("cannot create documents in another organization")
	}
	if !authz.IsAdmin(user) && in.OwnerUserID != user.UserID {
		return nil, apperr.Forbidden("cannot create documents owned by another user")
	}

	ext, err := s.validateCreate(&in)
	if err != nil {
		return nil, err
	}

	sensitivity := model.DefaultSensitivity
	if in.Sensitivity != nil {
		sensitivity = *in.Sensitivity
	}
	status := model.StatusActive
	if in.ConversionPending {
		status = model.StatusProcessing
	}

	now := s.now()
	doc := &model.Document{
		ID:             uuid.New().String(),
		OwnerUserID:    in.OwnerUserID,
		OrganizationID: in.OrganizationID,
		FileName:       in.FileName,
		FileExtension:  ext,
		Location:       in.Location,
		Category:       in.Category,
		Sensitivity:    sensitivity,
		ExpiryDate:     in.ExpiryDate,
		Version:        1,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, mapRepoErr(ctx, "create document", err)
	}

	// Past this point the metadata record is committed; archive and index
	// failures are logged and left for re-ingestion.
	if in.Content != "" {
		s.archiveContent(ctx, stored, in.Content)
		s.indexContent(ctx, stored, in.Content)
	}
	return stored, nil
}

func (s *documentService) Update(ctx context.Context, id string, in model.UpdateDocumentInput, user model.UserContext) (*model.Document, error) {
	if id == "" {
		return nil, apperr.Validation("id", "is required")
	}
	if !user.Complete() {
		return nil, apperr.Forbidden("incomplete user context")
	}
	if in.Empty() {
		return nil, apperr.Validation("changes", "at least one field must change")
	}

	pinned := in.ExpectedVersion != 0
	for attempt := 0; ; attempt++ {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, mapRepoErr(ctx, "load document", err)
		}
		if err := authz.CanModify(current, user); err != nil {
			return nil, err
		}

		merged, err := s.applyChanges(current, in)
		if err != nil {
			return nil, err
		}
		merged.UpdatedAt = s.now()

		expected := current.Version
		if pinned {
			expected = in.ExpectedVersion
		}

		stored, err := s.repo.Update(ctx, id, expected, merged)
		if err == nil {
			if in.Location != nil || in.Category != nil || in.FileName != nil {
				s.reindexMetadata(ctx, stored)
			}
			return stored, nil
		}
		err = mapRepoErr(ctx, "update document", err)
		if !pinned && apperr.Is(err, apperr.KindConflict) && attempt < maxUpdateRetries {
			// Lost the race without a pinned version: re-read and reapply.
			continue
		}
		return nil, err
	}
}

func (s *documentService) Delete(ctx context.Context, id string, user model.UserContext) error {
	if id == "" {
		return apperr.Validation("id", "is required")
	}
	if !user.Complete() {
		return apperr.Forbidden("incomplete user context")
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepoErr(ctx, "load document", err)
	}
	if err := authz.CanDelete(doc, user); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(ctx, "delete document", err)
	}

	if s.archive != nil {
		if err := s.archive.Delete(ctx, archiveKey(doc)); err != nil {
			logJSON(map[string]any{"event": "archive_delete_failed", "document_id": doc.ID, "error": err.Error()})
		}
	}
	if s.index != nil {
		if err := s.index.Remove(ctx, doc.ID); err != nil {
			logJSON(map[string]any{"event": "index_remove_failed", "document_id": doc.ID, "error": err.Error()})
		}
	}
	return nil
}

func (s *documentService) Get(ctx context.Context, id string, user model.UserContext) (*model.Document, error) {
	return s.authorizedDoc(ctx, id, user)
}

func (s *documentService) GetContent(ctx context.Context, id string, user model.UserContext) (io.ReadCloser, storage.ObjectInfo, error) {
	doc, err := s.authorizedDoc(ctx, id, user)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	if s.archive == nil {
		return nil, storage.ObjectInfo{}, apperr.Internal("content archive", errNoArchive)
	}

	rc, info, err := s.archive.Get(ctx, archiveKey(doc))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, storage.ObjectInfo{}, &apperr.Error{Kind: apperr.KindNotFound, Msg: "document content not found: " + id}
		case ctx.Err() != nil:
			return nil, storage.ObjectInfo{}, apperr.Timeout("read archived content", err)
		default:
			return nil, storage.ObjectInfo{}, apperr.Internal("read archived content", err)
		}
	}
	return rc, info, nil
}

func (s *documentService) ContentURL(ctx context.Context, id string, user model.UserContext) (string, error) {
	doc, err := s.authorizedDoc(ctx, id, user)
	if err != nil {
		return "", err
	}
	if s.archive == nil {
		return "", apperr.Internal("content archive", errNoArchive)
	}

	url, err := s.archive.PresignGet(ctx, archiveKey(doc), presignExpiry)
	if err != nil {
		if ctx.Err() != nil {
			return "", apperr.Timeout("presign content url", err)
		}
		return "", apperr.Internal("presign content url", err)
	}
	return url, nil
}

// authorizedDoc loads a document and runs the read-access check, shared by the
// content operations.
func (s *documentService) authorizedDoc(ctx context.Context, id string, user model.UserContext) (*model.Document, error) {
	if id == "" {
		return nil, apperr.Validation("id", "is required")
	}
	if !user.Complete() {
		return nil, apperr.Forbidden("incomplete user context")
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(ctx, "load document", err)
	}
	if err := authz.CanAccess(doc, user); err != nil {
		return nil, err
	}
	return doc, nil
}

// validateCreate checks the creation invariants and returns the derived
// file extension.
func (s *documentService) validateCreate(in *model.CreateDocumentInput) (string, error) {
	if in.OwnerUserID == "" {
		return "", apperr.Validation("owner_user_id", "is required")
	}
	if in.FileName == "" {
		return "", apperr.Validation("file_name", "is required")
	}
	ext := strings.ToLower(filepath.Ext(in.FileName))
	if !s.catalog.SupportedExtension(ext) {
		return "", apperr.Validation("file_name", fmt.Sprintf("unsupported extension %q", ext))
	}
	if err := s.validateLocation(in.Location); err != nil {
		return "", err
	}
	if in.Sensitivity != nil {
		if err := validateSensitivity(*in.Sensitivity); err != nil {
			return "", err
		}
	}
	return ext, nil
}

// applyChanges merges the update onto a copy of current and re-validates the
// merged record. Owner, organization and creation time are never touched.
func (s *documentService) applyChanges(current *model.Document, in model.UpdateDocumentInput) (*model.Document, error) {
	merged := *current
	if in.FileName != nil {
		if *in.FileName == "" {
			return nil, apperr.Validation("file_name", "must not be empty")
		}
		ext := strings.ToLower(filepath.Ext(*in.FileName))
		if !s.catalog.SupportedExtension(ext) {
			return nil, apperr.Validation("file_name", fmt.Sprintf("unsupported extension %q", ext))
		}
		merged.FileName = *in.FileName
		merged.FileExtension = ext
	}
	if in.Location != nil {
		if err := s.validateLocation(*in.Location); err != nil {
			return nil, err
		}
		merged.Location = *in.Location
	}
	if in.Category != nil {
		merged.Category = *in.Category
	}
	if in.Sensitivity != nil {
		if err := validateSensitivity(*in.Sensitivity); err != nil {
			return nil, err
		}
		merged.Sensitivity = *in.Sensitivity
	}
	if in.ExpiryDate != nil {
		merged.ExpiryDate = in.ExpiryDate
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Validation("status", fmt.Sprintf("unknown status %q", *in.Status))
		}
		merged.Status = *in.Status
	}
	return &merged, nil
}

func (s *documentService) validateLocation(loc string) error {
	if loc == "" {
		return apperr.Validation("location", "is required")
	}
	if !s.catalog.ValidLocation(loc) {
		return apperr.Validation("location", fmt.Sprintf("unknown location %q", loc))
	}
	return nil
}

func validateSensitivity(n int) error {
	if n < model.MinSensitivity || n > model.MaxSensitivity {
		return apperr.Validation("sensitivity", fmt.Sprintf("must be in [%d,%d]", model.MinSensitivity, model.MaxSensitivity))
	}
	return nil
}

func (s *documentService) archiveContent(ctx context.Context, doc *model.Document, content string) {
	if s.archive == nil {
		return
	}
	_, err := s.archive.Put(ctx, archiveKey(doc), strings.NewReader(content), storage.PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: "text/plain",
		Metadata: map[string]string{
			"document-id":     doc.ID,
			"organization-id": doc.OrganizationID,
		},
	})
	if err != nil {
		logJSON(map[string]any{"event": "archive_put_failed", "document_id": doc.ID, "error": err.Error()})
	}
}

func (s *documentService) indexContent(ctx context.Context, doc *model.Document, content string) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(ctx, doc, content); err != nil {
		logJSON(map[string]any{"event": "index_add_failed", "document_id": doc.ID, "error": err.Error()})
	}
}

func (s *documentService) reindexMetadata(ctx context.Context, doc *model.Document) {
	if s.index == nil {
		return
	}
	if err := s.index.Reindex(ctx, doc); err != nil {
		logJSON(map[string]any{"event": "index_refresh_failed", "document_id": doc.ID, "error": err.Error()})
	}
}

func archiveKey(doc *model.Document) string {
	return "documents/" + doc.ID + doc.FileExtension
}

// mapRepoErr translates repository errors into the typed taxonomy. Context
// expiry wins over whatever the driver reported.
func mapRepoErr(ctx context.Context, op string, err error) error {
	switch {
	case ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded):
		return apperr.Timeout(op, err)
	case errors.Is(err, sql.ErrNoRows):
		return &apperr.Error{Kind: apperr.KindNotFound, Msg: op + ": document not found"}
	case errors.Is(err, repository.ErrVersionConflict):
		return &apperr.Error{Kind: apperr.KindConflict, Msg: op + ": concurrent modification", Err: err}
	default:
		return apperr.Internal(op, err)
	}
}

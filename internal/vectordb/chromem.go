package vectordb

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"docindex/internal/embeddings"
	"docindex/internal/model"
	"docindex/internal/semantic"
)

const (
	collectionName = "documents"

	// fieldDocumentID lets Reindex find an entry through the where clause.
	fieldDocumentID = "document_id"
)

// ChromemStore is the in-process vector-retrieval collaborator, backed by
// chromem-go. One collection entry per document; the filter metadata mirrors
// the fields the semantic filter builder emits.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

var (
	_ semantic.Retriever = (*ChromemStore)(nil)
	_ semantic.Indexer   = (*ChromemStore)(nil)
)

// NewChromemStore creates an in-memory store, or a persistent one when
// persistPath is non-empty.
func NewChromemStore(embedder embeddings.Embedder, persistPath string) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if persistPath != "" {
		db, err = chromem.NewPersistentDB(persistPath, true)
		if err != nil {
			return nil, fmt.Errorf("open persistent vector db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	ef := embeddings.ToChromemFunc(embedder)
	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{db: db, collection: col, embedFunc: ef}, nil
}

// Index adds or replaces the passage and filter metadata for a document.
func (s *ChromemStore) Index(ctx context.Context, doc *model.Document, passage string) error {
	if passage == "" {
		return nil
	}
	// Replace rather than rely on upsert semantics.
	if err := s.collection.Delete(ctx, nil, nil, doc.ID); err != nil {
		return fmt.Errorf("replace indexed document: %w", err)
	}
	err := s.collection.AddDocument(ctx, chromem.Document{
		ID:       doc.ID,
		Content:  passage,
		Metadata: filterMetadata(doc),
	})
	if err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	return nil
}

// Reindex refreshes the filter metadata after an update, keeping the stored
// passage. Documents that were never indexed are skipped.
func (s *ChromemStore) Reindex(ctx context.Context, doc *model.Document) error {
	if s.collection.Count() == 0 {
		return nil
	}
	// Look the entry up through its own id; the query text is irrelevant
	// once the where clause pins a single document.
	where := map[string]string{fieldDocumentID: doc.ID}
	results, err := s.collection.Query(ctx, doc.FileName, 1, where, nil)
	if err != nil {
		return fmt.Errorf("look up indexed document: %w", err)
	}
	if len(results) == 0 {
		// Not indexed (no content was supplied at create); nothing to refresh.
		return nil
	}
	return s.Index(ctx, doc, results[0].Content)
}

// Remove drops a document from the collection; missing ids are a no-op.
func (s *ChromemStore) Remove(ctx context.Context, documentID string) error {
	return s.collection.Delete(ctx, nil, nil, documentID)
}

// Retrieve runs a relevance query constrained by the structured filter.
func (s *ChromemStore) Retrieve(ctx context.Context, query string, limit int, filter semantic.Filter) ([]semantic.Result, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	// chromem-go requires nResults <= collection size.
	if limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, query, limit, filter.Where(), nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]semantic.Result, len(results))
	for i, r := range results {
		out[i] = semantic.Result{
			DocumentID: r.ID,
			Score:      r.Similarity,
			Passage:    r.Content,
			Metadata:   r.Metadata,
		}
	}
	return out, nil
}

// Count reports how many documents are indexed.
func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

func filterMetadata(doc *model.Document) map[string]string {
	md := map[string]string{
		fieldDocumentID:              doc.ID,
		semantic.FieldOrganizationID: doc.OrganizationID,
		semantic.FieldOwnerUserID:    doc.OwnerUserID,
		semantic.FieldLocation:       doc.Location,
		"file_name":                  doc.FileName,
		"status":                     string(doc.Status),
	}
	if doc.Category != "" {
		md[semantic.FieldCategory] = doc.Category
	}
	return md
}

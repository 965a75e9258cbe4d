package semantic

import (
	"context"
	"fmt"
	"strings"

	"docindex/internal/apperr"
	"docindex/internal/model"
)

// BuildFilter translates a semantic request plus the caller's context into the
// structured conjunctive filter consumed by the vector-retrieval collaborator.
//
// Condition order is fixed: tenant scope first (always present, never
// omitted), then ownership for non-admin callers, then the optional location
// and category filters. An incomplete user context fails closed.
func BuildFilter(req model.SemanticRequest, user model.UserContext) (Filter, error) {
	if !user.Complete() {
		return Filter{}, apperr.Forbidden("incomplete user context")
	}
	if strings.TrimSpace(req.Query) == "" {
		return Filter{}, apperr.Validation("query", "must not be empty")
	}
	if req.MaxResults < 0 || req.MaxResults > model.MaxSemanticResults {
		return Filter{}, apperr.Validation("max_results",
			fmt.Sprintf("must be in [%d,%d]", model.MinSemanticResults, model.MaxSemanticResults))
	}

	conds := []Condition{{Field: FieldOrganizationID, Value: user.OrganizationID}}
	if user.Role != model.RoleAdmin {
		conds = append(conds, Condition{Field: FieldOwnerUserID, Value: user.UserID})
	}
	if req.Location != "" {
		conds = append(conds, Condition{Field: FieldLocation, Value: req.Location})
	}
	if req.Category != "" {
		conds = append(conds, Condition{Field: FieldCategory, Value: req.Category})
	}
	return Filter{conditions: conds}, nil
}

// EffectiveLimit resolves the result bound: the original retrieval
// configuration's default of 5 when the caller did not supply one.
func EffectiveLimit(req model.SemanticRequest) int {
	if req.MaxResults == 0 {
		return model.DefaultSemanticResults
	}
	return req.MaxResults
}

// Result is one scored passage from the collaborator, passed through
// unmodified: score, text passage and attached metadata.
type Result struct {
	DocumentID string
	Score      float32
	Passage    string
	Metadata   map[string]string
}

// Retriever is the vector-retrieval collaborator contract. Implementations
// must honor context cancellation; the caller propagates its timeout budget.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int, filter Filter) ([]Result, error)
}

// Indexer keeps the retrieval collection in sync with the document store.
// Staleness here is bounded, not strong: the metadata access paths never
// depend on it.
type Indexer interface {
	// Index adds or replaces the passage and filter metadata for a document.
	Index(ctx context.Context, doc *model.Document, passage string) error
	// Reindex refreshes the stored filter metadata after a document update,
	// keeping the existing passage. Unindexed documents are a no-op.
	Reindex(ctx context.Context, doc *model.Document) error
	// Remove drops a document from the collection. Missing ids are a no-op.
	Remove(ctx context.Context, documentID string) error
}

package service

import (
	"context"
	"errors"

	"docindex/internal/apperr"
	"docindex/internal/authz"
	"docindex/internal/model"
	"docindex/internal/search"
	"docindex/internal/semantic"
)

// SearchService exposes the two search paths: metadata search over the index
// access paths and semantic search through the vector-retrieval collaborator.
type SearchService interface {
	SearchMetadata(ctx context.Context, req model.SearchRequest, user model.UserContext) (*model.SearchResult, error)
	SearchSemantic(ctx context.Context, req model.SemanticRequest, user model.UserContext) (*model.SemanticResult, error)
}

type searchService struct {
	engine    *search.Engine
	retriever semantic.Retriever
}

// NewSearchService constructs a SearchService. retriever may be nil when no
// vector backend is configured; semantic searches then fail with an internal
// error rather than silently returning nothing.
func NewSearchService(engine *search.Engine, retriever semantic.Retriever) SearchService {
	return &searchService{engine: engine, retriever: retriever}
}

func (s *searchService) SearchMetadata(ctx context.Context, req model.SearchRequest, user model.UserContext) (*model.SearchResult, error) {
	return s.engine.Search(ctx, req, user)
}

func (s *searchService) SearchSemantic(ctx context.Context, req model.SemanticRequest, user model.UserContext) (*model.SemanticResult, error) {
	filter, err := semantic.BuildFilter(req, user)
	if err != nil {
		return nil, err
	}
	if s.retriever == nil {
		return nil, apperr.Internal("semantic search", errNoRetriever)
	}

	results, err := s.retriever.Retrieve(ctx, req.Query, semantic.EffectiveLimit(req), filter)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperr.Timeout("semantic search", err)
		}
		return nil, apperr.Internal("semantic search", err)
	}

	// Defense in depth: the filter already scoped the query, but the returned
	// identifiers pass through the guard again before leaving the core.
	matches := make([]model.SemanticMatch, 0, len(results))
	for _, r := range results {
		shadow := model.Document{
			ID:             r.DocumentID,
			OwnerUserID:    r.Metadata[semantic.FieldOwnerUserID],
			OrganizationID: r.Metadata[semantic.FieldOrganizationID],
		}
		if authz.CanAccess(&shadow, user) != nil {
			continue
		}
		matches = append(matches, model.SemanticMatch{
			DocumentID:     r.DocumentID,
			RelevanceScore: r.Score,
			TextPassage:    r.Passage,
			Metadata:       r.Metadata,
		})
	}
	return &model.SemanticResult{Results: matches}, nil
}

var errNoRetriever = errors.New("no vector retriever configured")

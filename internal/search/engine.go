package search

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"docindex/internal/apperr"
	"docindex/internal/authz"
	"docindex/internal/model"
	"docindex/internal/repository"
)

// pathSelections counts metadata searches by the access path the planner chose.
var pathSelections = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "search_path_selections_total",
		Help: "Metadata searches by selected access path.",
	},
	[]string{"path"},
)

// Engine answers metadata search requests: it applies index-path selection,
// residual in-memory filters for conditions the index cannot express, and
// deterministic pagination. Every result set is additionally run through the
// authorization guard before it is returned.
type Engine struct {
	repo repository.DocumentRepository
}

// NewEngine constructs a metadata search engine over the given repository.
func NewEngine(repo repository.DocumentRepository) *Engine {
	return &Engine{repo: repo}
}

// Search runs a metadata search for the given caller.
// Page is 1-based; page and pageSize default when zero and are rejected with
// a validation error when out of range. TotalCount counts every matching
// document before slicing, so sequential pages partition the result set.
func (e *Engine) Search(ctx context.Context, req model.SearchRequest, user model.UserContext) (*model.SearchResult, error) {
	if !user.Complete() {
		// Fail closed rather than return an under-scoped result set.
		return nil, apperr.Forbidden("incomplete user context")
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	scope := Plan(req, user)
	pathSelections.WithLabelValues(scope.Path.String()).Inc()

	docs, err := e.repo.ListScope(ctx, scope)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperr.Timeout("metadata search", err)
		}
		return nil, apperr.Internal("list scope", err)
	}

	ownerResidual := needsOwnerResidual(scope, user)
	matched := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if ownerResidual && d.OwnerUserID != user.UserID {
			continue
		}
		if matchesResiduals(&d, req) {
			matched = append(matched, d)
		}
	}

	// Defense in depth: the guard re-checks what the path and residuals
	// should already have guaranteed.
	matched = authz.FilterAuthorized(matched, user)

	total := len(matched)
	// Any page past the data yields an empty page. Checking against
	// total/pageSize before multiplying keeps arbitrarily large page numbers
	// from overflowing into a negative slice index.
	start, end := total, total
	if req.Page-1 <= total/req.PageSize {
		start = (req.Page - 1) * req.PageSize
		if start > total {
			start = total
		}
		if end = start + req.PageSize; end > total {
			end = total
		}
	}

	return &model.SearchResult{
		Documents:  matched[start:end],
		TotalCount: total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		HasMore:    end < total,
	}, nil
}

// validateRequest applies defaults and bounds. It mutates req in place so the
// response echoes the effective page and pageSize.
func validateRequest(req *model.SearchRequest) error {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = model.DefaultPageSize
	}
	if req.Page < 1 {
		return apperr.Validation("page", "must be >= 1")
	}
	if req.PageSize < model.MinPageSize || req.PageSize > model.MaxPageSize {
		return apperr.Validation("page_size", fmt.Sprintf("must be in [%d,%d]", model.MinPageSize, model.MaxPageSize))
	}
	for field, v := range map[string]*int{
		"sensitivity":     req.Sensitivity,
		"min_sensitivity": req.MinSensitivity,
		"max_sensitivity": req.MaxSensitivity,
	} {
		if v != nil && (*v < model.MinSensitivity || *v > model.MaxSensitivity) {
			return apperr.Validation(field, fmt.Sprintf("must be in [%d,%d]", model.MinSensitivity, model.MaxSensitivity))
		}
	}
	if req.MinSensitivity != nil && req.MaxSensitivity != nil && *req.MinSensitivity > *req.MaxSensitivity {
		return apperr.Validation("min_sensitivity", "must not exceed max_sensitivity")
	}
	return nil
}

// matchesResiduals applies the predicates the index cannot express.
func matchesResiduals(d *model.Document, req model.SearchRequest) bool {
	if req.Category != "" && d.Category != req.Category {
		return false
	}
	if req.FileExtension != "" && d.FileExtension != req.FileExtension {
		return false
	}
	if req.Sensitivity != nil && d.Sensitivity != *req.Sensitivity {
		return false
	}
	if req.MinSensitivity != nil && d.Sensitivity < *req.MinSensitivity {
		return false
	}
	if req.MaxSensitivity != nil && d.Sensitivity > *req.MaxSensitivity {
		return false
	}
	// Expiry bounds only ever match documents that have an expiry date, and
	// both comparisons are strict.
	if req.ExpiresAfter != nil || req.ExpiresBefore != nil {
		if d.ExpiryDate == nil {
			return false
		}
		if req.ExpiresAfter != nil && !d.ExpiryDate.After(*req.ExpiresAfter) {
			return false
		}
		if req.ExpiresBefore != nil && !d.ExpiryDate.Before(*req.ExpiresBefore) {
			return false
		}
	}
	return true
}

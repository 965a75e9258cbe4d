package model

import "time"

// Pagination bounds for metadata search.
const (
	MinPageSize     = 1
	MaxPageSize     = 100
	DefaultPageSize = 10
)

// Semantic search result bounds.
const (
	MinSemanticResults     = 1
	MaxSemanticResults     = 100
	DefaultSemanticResults = 5
)

// CreateDocumentInput carries everything needed to create a document.
// FileExtension is always derived from FileName, never supplied.
type CreateDocumentInput struct {
	OwnerUserID    string     `json:"owner_user_id"`
	OrganizationID string     `json:"organization_id"`
	FileName       string     `json:"file_name"`
	Location       string     `json:"location"`
	Category       string     `json:"category,omitempty"`
	Sensitivity    *int       `json:"sensitivity,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	// Content is optional plain text; when present it is archived and indexed
	// for semantic retrieval.
	Content string `json:"content,omitempty"`
	// ConversionPending marks documents whose upstream format conversion has
	// not finished yet; they start in StatusProcessing instead of StatusActive.
	ConversionPending bool `json:"conversion_pending,omitempty"`
}

// UpdateDocumentInput carries the changed fields for an update.
// Nil pointers mean "unchanged". Owner and organization cannot be changed.
type UpdateDocumentInput struct {
	FileName    *string         `json:"file_name,omitempty"`
	Location    *string         `json:"location,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Sensitivity *int            `json:"sensitivity,omitempty"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	Status      *DocumentStatus `json:"status,omitempty"`
	// ExpectedVersion pins the optimistic-concurrency check to the version the
	// caller read. Zero means "latest"; conflicts are then retried internally.
	ExpectedVersion int `json:"expected_version,omitempty"`
}

// Empty reports whether the input changes nothing.
func (in UpdateDocumentInput) Empty() bool {
	return in.FileName == nil && in.Location == nil && in.Category == nil &&
		in.Sensitivity == nil && in.ExpiryDate == nil && in.Status == nil
}

// SearchRequest is a metadata filter set for paginated search.
// The tenant scope (organization) always comes from the UserContext, never
// from the request itself.
type SearchRequest struct {
	Location       string     `json:"location,omitempty"`
	Category       string     `json:"category,omitempty"`
	FileExtension  string     `json:"file_extension,omitempty"`
	Sensitivity    *int       `json:"sensitivity,omitempty"`
	MinSensitivity *int       `json:"min_sensitivity,omitempty"`
	MaxSensitivity *int       `json:"max_sensitivity,omitempty"`
	ExpiresAfter   *time.Time `json:"expires_after,omitempty"`
	ExpiresBefore  *time.Time `json:"expires_before,omitempty"`
	Page           int        `json:"page"`
	PageSize       int        `json:"page_size"`
}

// SearchResult is a stable, deterministic page of matching documents.
// TotalCount is computed over every filter before slicing.
type SearchResult struct {
	Documents  []Document `json:"documents"`
	TotalCount int        `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	HasMore    bool       `json:"has_more"`
}

// SemanticRequest is a free-text relevance query with optional filters.
type SemanticRequest struct {
	Query      string `json:"query"`
	Location   string `json:"location,omitempty"`
	Category   string `json:"category,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// SemanticMatch is one scored passage returned by the vector-retrieval
// collaborator, passed through unmodified apart from authorization filtering.
type SemanticMatch struct {
	DocumentID     string            `json:"document_id"`
	RelevanceScore float32           `json:"relevance_score"`
	TextPassage    string            `json:"text_passage"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// SemanticResult is the response envelope for semantic search.
type SemanticResult struct {
	Results []SemanticMatch `json:"results"`
}

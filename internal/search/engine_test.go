package search

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"docindex/internal/apperr"
	"docindex/internal/model"
	"docindex/internal/repository"
	repoMocks "docindex/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	engineAdmin = model.UserContext{UserID: "admin-1", OrganizationID: "org-1", Role: model.RoleAdmin}
	engineUser  = model.UserContext{UserID: "user-1", OrganizationID: "org-1", Role: model.RoleUser}
)

func orgDoc(id, owner, location string, mutate ...func(*model.Document)) model.Document {
	d := model.Document{
		ID:             id,
		OwnerUserID:    owner,
		OrganizationID: "org-1",
		FileName:       id + ".pdf",
		FileExtension:  ".pdf",
		Location:       location,
		Sensitivity:    3,
		Version:        1,
		Status:         model.StatusActive,
	}
	for _, m := range mutate {
		m(&d)
	}
	return d
}

func TestEngine_Search_Validation(t *testing.T) {
	five := 5
	six := 6
	two := 2

	tests := []struct {
		name      string
		req       model.SearchRequest
		user      model.UserContext
		wantKind  apperr.Kind
		wantField string
	}{
		{
			name:     "incomplete user context fails closed",
			req:      model.SearchRequest{},
			user:     model.UserContext{UserID: "user-1"},
			wantKind: apperr.KindForbidden,
		},
		{
			name:      "negative page",
			req:       model.SearchRequest{Page: -1},
			user:      engineUser,
			wantKind:  apperr.KindValidation,
			wantField: "page",
		},
		{
			name:      "page size above bound",
			req:       model.SearchRequest{PageSize: 101},
			user:      engineUser,
			wantKind:  apperr.KindValidation,
			wantField: "page_size",
		},
		{
			name:      "sensitivity out of range",
			req:       model.SearchRequest{Sensitivity: &six},
			user:      engineUser,
			wantKind:  apperr.KindValidation,
			wantField: "sensitivity",
		},
		{
			name:      "min above max",
			req:       model.SearchRequest{MinSensitivity: &five, MaxSensitivity: &two},
			user:      engineUser,
			wantKind:  apperr.KindValidation,
			wantField: "min_sensitivity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			eng := NewEngine(mRepo)

			res, err := eng.Search(context.Background(), tt.req, tt.user)

			assert.Nil(t, res)
			assert.True(t, apperr.Is(err, tt.wantKind), "got %v", err)
			if tt.wantField != "" {
				var e *apperr.Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, tt.wantField, e.Field)
			}
			// The repository must never be touched on a rejected request.
			mRepo.AssertNotCalled(t, "ListScope", mock.Anything, mock.Anything)
		})
	}
}

func TestEngine_Search_PathsAndOwnership(t *testing.T) {
	docs := []model.Document{
		orgDoc("a", "user-1", "croydon"),
		orgDoc("b", "user-2", "croydon"),
		orgDoc("c", "user-1", "manchester"),
	}

	t.Run("admin with no filters sees all org documents", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("ListScope", mock.Anything, mock.MatchedBy(func(s repository.Scope) bool {
			return s.Path == repository.PathOrg && s.OrganizationID == "org-1"
		})).Return(docs, nil)

		res, err := NewEngine(mRepo).Search(context.Background(), model.SearchRequest{}, engineAdmin)

		require.NoError(t, err)
		assert.Equal(t, 3, res.TotalCount)
		mRepo.AssertExpectations(t)
	})

	t.Run("user with no filters sees only owned documents", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("ListScope", mock.Anything, mock.MatchedBy(func(s repository.Scope) bool {
			return s.Path == repository.PathOrgOwner && s.OwnerUserID == "user-1"
		})).Return([]model.Document{docs[0], docs[2]}, nil)

		res, err := NewEngine(mRepo).Search(context.Background(), model.SearchRequest{}, engineUser)

		require.NoError(t, err)
		assert.Equal(t, 2, res.TotalCount)
		for _, d := range res.Documents {
			assert.Equal(t, "user-1", d.OwnerUserID)
		}
	})

	t.Run("location path applies ownership residual for users", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("ListScope", mock.Anything, mock.MatchedBy(func(s repository.Scope) bool {
			return s.Path == repository.PathOrgLocation && s.Location == "croydon"
		})).Return([]model.Document{docs[0], docs[1]}, nil)

		res, err := NewEngine(mRepo).Search(context.Background(),
			model.SearchRequest{Location: "croydon"}, engineUser)

		require.NoError(t, err)
		assert.Equal(t, 1, res.TotalCount)
		assert.Equal(t, "a", res.Documents[0].ID)
	})

	t.Run("location path returns all owners for admins", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("ListScope", mock.Anything, mock.Anything).
			Return([]model.Document{docs[0], docs[1]}, nil)

		res, err := NewEngine(mRepo).Search(context.Background(),
			model.SearchRequest{Location: "croydon"}, engineAdmin)

		require.NoError(t, err)
		assert.Equal(t, 2, res.TotalCount)
		for _, d := range res.Documents {
			assert.Equal(t, "croydon", d.Location)
		}
	})

	t.Run("cross-org rows from a buggy path never leak", func(t *testing.T) {
		leaked := orgDoc("z", "user-1", "croydon")
		leaked.OrganizationID = "org-2"
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("ListScope", mock.Anything, mock.Anything).
			Return([]model.Document{docs[0], leaked}, nil)

		res, err := NewEngine(mRepo).Search(context.Background(), model.SearchRequest{}, engineUser)

		require.NoError(t, err)
		assert.Equal(t, 1, res.TotalCount)
		assert.Equal(t, "a", res.Documents[0].ID)
	})
}

func TestEngine_Search_Residuals(t *testing.T) {
	expiry := func(t time.Time) func(*model.Document) {
		return func(d *model.Document) { d.ExpiryDate = &t }
	}
	sens := func(n int) func(*model.Document) {
		return func(d *model.Document) { d.Sensitivity = n }
	}
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	docs := []model.Document{
		orgDoc("legal", "user-1", "croydon", func(d *model.Document) { d.Category = "Legal" }),
		orgDoc("txt", "user-1", "croydon", func(d *model.Document) { d.FileExtension = ".txt" }),
		orgDoc("hot", "user-1", "croydon", sens(5)),
		orgDoc("cold", "user-1", "croydon", sens(1)),
		orgDoc("soon", "user-1", "croydon", expiry(base.AddDate(0, 1, 0))),
		orgDoc("later", "user-1", "croydon", expiry(base.AddDate(1, 0, 0))),
	}

	newEngine := func() *Engine {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("ListScope", mock.Anything, mock.Anything).Return(docs, nil)
		return NewEngine(mRepo)
	}

	one, three, five := 1, 3, 5

	tests := []struct {
		name    string
		req     model.SearchRequest
		wantIDs []string
	}{
		{
			name:    "category equality",
			req:     model.SearchRequest{Category: "Legal"},
			wantIDs: []string{"legal"},
		},
		{
			name:    "file extension equality",
			req:     model.SearchRequest{FileExtension: ".txt"},
			wantIDs: []string{"txt"},
		},
		{
			name:    "exact sensitivity",
			req:     model.SearchRequest{Sensitivity: &five},
			wantIDs: []string{"hot"},
		},
		{
			name:    "sensitivity range",
			req:     model.SearchRequest{MinSensitivity: &one, MaxSensitivity: &three},
			wantIDs: []string{"legal", "txt", "cold", "soon", "later"},
		},
		{
			name: "both expiry bounds are strict and require an expiry date",
			req: model.SearchRequest{
				ExpiresAfter:  ptrTime(base),
				ExpiresBefore: ptrTime(base.AddDate(0, 6, 0)),
			},
			wantIDs: []string{"soon"},
		},
		{
			name:    "single expiry bound excludes documents without expiry",
			req:     model.SearchRequest{ExpiresAfter: ptrTime(base)},
			wantIDs: []string{"soon", "later"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newEngine().Search(context.Background(), tt.req, engineUser)

			require.NoError(t, err)
			ids := make([]string, 0, len(res.Documents))
			for _, d := range res.Documents {
				ids = append(ids, d.ID)
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
			assert.Equal(t, len(tt.wantIDs), res.TotalCount)
		})
	}
}

func TestEngine_Search_PaginationPartitions(t *testing.T) {
	// 23 matching documents, page size 5: pages 1..5 must yield exactly the
	// 23 distinct ids with no duplicates and no omissions.
	const n = 23
	docs := make([]model.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, orgDoc(fmt.Sprintf("doc-%02d", i), "user-1", "croydon"))
	}

	mRepo := new(repoMocks.MockDocumentRepository)
	mRepo.On("ListScope", mock.Anything, mock.Anything).Return(docs, nil)
	eng := NewEngine(mRepo)

	seen := map[string]bool{}
	for page := 1; page <= 5; page++ {
		res, err := eng.Search(context.Background(),
			model.SearchRequest{Page: page, PageSize: 5}, engineUser)
		require.NoError(t, err)

		assert.Equal(t, n, res.TotalCount)
		assert.Equal(t, page < 5, res.HasMore)
		for _, d := range res.Documents {
			assert.False(t, seen[d.ID], "duplicate %s on page %d", d.ID, page)
			seen[d.ID] = true
		}
	}
	assert.Len(t, seen, n)

	t.Run("page past the end is empty, not an error", func(t *testing.T) {
		res, err := eng.Search(context.Background(),
			model.SearchRequest{Page: 9, PageSize: 5}, engineUser)
		require.NoError(t, err)
		assert.Empty(t, res.Documents)
		assert.False(t, res.HasMore)
		assert.Equal(t, n, res.TotalCount)
	})

	t.Run("huge page number does not overflow the slice bounds", func(t *testing.T) {
		res, err := eng.Search(context.Background(),
			model.SearchRequest{Page: math.MaxInt / 2, PageSize: 100}, engineUser)
		require.NoError(t, err)
		assert.Empty(t, res.Documents)
		assert.False(t, res.HasMore)
		assert.Equal(t, n, res.TotalCount)
	})
}

func ptrTime(t time.Time) *time.Time { return &t }

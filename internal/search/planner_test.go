package search

import (
	"testing"

	"docindex/internal/model"
	"docindex/internal/repository"

	"github.com/stretchr/testify/assert"
)

func TestPlan(t *testing.T) {
	admin := model.UserContext{UserID: "a", OrganizationID: "org-1", Role: model.RoleAdmin}
	user := model.UserContext{UserID: "u", OrganizationID: "org-1", Role: model.RoleUser}

	tests := []struct {
		name      string
		req       model.SearchRequest
		user      model.UserContext
		wantPath  repository.AccessPath
		wantOwner string
		wantLoc   string
	}{
		{
			name:     "location filter wins for user",
			req:      model.SearchRequest{Location: "croydon"},
			user:     user,
			wantPath: repository.PathOrgLocation,
			wantLoc:  "croydon",
		},
		{
			name:     "location filter wins for admin",
			req:      model.SearchRequest{Location: "manchester"},
			user:     admin,
			wantPath: repository.PathOrgLocation,
			wantLoc:  "manchester",
		},
		{
			name:     "admin without location scans the organization",
			req:      model.SearchRequest{Category: "Legal"},
			user:     admin,
			wantPath: repository.PathOrg,
		},
		{
			name:      "user without location is owner-scoped",
			req:       model.SearchRequest{},
			user:      user,
			wantPath:  repository.PathOrgOwner,
			wantOwner: "u",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := Plan(tt.req, tt.user)

			assert.Equal(t, tt.wantPath, scope.Path)
			assert.Equal(t, tt.user.OrganizationID, scope.OrganizationID)
			assert.Equal(t, tt.wantOwner, scope.OwnerUserID)
			assert.Equal(t, tt.wantLoc, scope.Location)
			assert.Equal(t, repository.ConsistencyStrong, scope.Consistency)
		})
	}
}

func TestNeedsOwnerResidual(t *testing.T) {
	admin := model.UserContext{UserID: "a", OrganizationID: "org-1", Role: model.RoleAdmin}
	user := model.UserContext{UserID: "u", OrganizationID: "org-1", Role: model.RoleUser}

	locScope := Plan(model.SearchRequest{Location: "croydon"}, user)
	assert.True(t, needsOwnerResidual(locScope, user))
	assert.False(t, needsOwnerResidual(Plan(model.SearchRequest{Location: "croydon"}, admin), admin))
	assert.False(t, needsOwnerResidual(Plan(model.SearchRequest{}, user), user))
}

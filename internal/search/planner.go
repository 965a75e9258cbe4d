package search

import (
	"docindex/internal/model"
	"docindex/internal/repository"
)

// Plan selects the access path for a metadata search request, in priority order:
//
//  1. A location filter wins: read the organization+location path. Ownership
//     for non-admin callers is applied as a residual filter afterwards.
//  2. Admins read the whole organization path.
//  3. Everyone else reads the organization+owner path.
//
// The choice is made once per request so the three patterns stay independently
// testable.
func Plan(req model.SearchRequest, user model.UserContext) repository.Scope {
	scope := repository.Scope{
		OrganizationID: user.OrganizationID,
		Consistency:    repository.ConsistencyStrong,
	}
	switch {
	case req.Location != "":
		scope.Path = repository.PathOrgLocation
		scope.Location = req.Location
	case user.Role == model.RoleAdmin:
		scope.Path = repository.PathOrg
	default:
		scope.Path = repository.PathOrgOwner
		scope.OwnerUserID = user.UserID
	}
	return scope
}

// needsOwnerResidual reports whether the chosen path can return documents the
// caller does not own, requiring the ownership residual filter.
func needsOwnerResidual(scope repository.Scope, user model.UserContext) bool {
	return scope.Path == repository.PathOrgLocation && user.Role != model.RoleAdmin
}

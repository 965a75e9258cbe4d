package authz

// Package authz is the authorization guard: pure functions over
// (Document, UserContext). The same checks are used to scope queries before
// they run and to post-filter every result set, deliberately redundant so a
// planner bug or a future access path cannot leak another tenant's documents.

import (
	"docindex/internal/apperr"
	"docindex/internal/model"
)

// IsOwner reports whether the caller owns the document.
func IsOwner(doc *model.Document, user model.UserContext) bool {
	return doc.OwnerUserID == user.UserID
}

// SameOrganization reports whether the document belongs to the caller's tenant.
func SameOrganization(doc *model.Document, user model.UserContext) bool {
	return doc.OrganizationID == user.OrganizationID
}

// IsAdmin reports whether the caller holds the admin role.
func IsAdmin(user model.UserContext) bool {
	return user.Role == model.RoleAdmin
}

// CanAccess decides read access. Cross-tenant requests are denied with a
// distinct error so callers can tell "wrong tenant" from "wrong owner".
// An incomplete user context fails closed.
func CanAccess(doc *model.Document, user model.UserContext) error {
	if !user.Complete() {
		return apperr.Forbidden("incomplete user context")
	}
	if !SameOrganization(doc, user) {
		return apperr.CrossOrg("document belongs to another organization")
	}
	if IsAdmin(user) || IsOwner(doc, user) {
		return nil
	}
	return apperr.Forbidden("document owned by another user")
}

// CanModify decides write access. Modification rights equal access rights in
// this model; there is no separate read/write distinction.
func CanModify(doc *model.Document, user model.UserContext) error {
	return CanAccess(doc, user)
}

// CanDelete decides delete access, same rule as CanAccess.
func CanDelete(doc *model.Document, user model.UserContext) error {
	return CanAccess(doc, user)
}

// FilterAuthorized returns only the documents the caller can access.
// It is the defense-in-depth check applied to all search/list responses.
func FilterAuthorized(docs []model.Document, user model.UserContext) []model.Document {
	out := make([]model.Document, 0, len(docs))
	for i := range docs {
		if CanAccess(&docs[i], user) == nil {
			out = append(out, docs[i])
		}
	}
	return out
}

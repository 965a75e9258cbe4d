package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

// Consistency selects the read guarantee for secondary access paths.
// The "search sees every committed write" contract of the search engine
// requires ConsistencyStrong; ConsistencyBounded permits a bounded staleness
// window and is used only by the semantic indexing pipeline.
type Consistency int

const (
	ConsistencyStrong Consistency = iota
	ConsistencyBounded
)

// AccessPath is one of the three predefined orderings/scopings of documents
// used to answer a metadata search.
type AccessPath int

const (
	// PathOrgLocation scopes by organization + location.
	PathOrgLocation AccessPath = iota
	// PathOrg scopes by organization only (admin searches).
	PathOrg
	// PathOrgOwner scopes by organization + owning user.
	PathOrgOwner
)

func (p AccessPath) String() string {
	switch p {
	case PathOrgLocation:
		return "org_location"
	case PathOrgOwner:
		return "org_owner"
	}
	return "org"
}

// Scope is a fully bound access path: which path to read and the key values
// for it. Fields not used by the chosen path are ignored.
type Scope struct {
	Path           AccessPath
	OrganizationID string
	OwnerUserID    string
	Location       string
	Consistency    Consistency
}

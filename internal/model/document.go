package model

import "time"

// DocumentStatus tracks the lifecycle of a document record.
type DocumentStatus string

const (
	// StatusActive is the normal, searchable state.
	StatusActive DocumentStatus = "active"
	// StatusProcessing is set when an upstream format conversion is still pending.
	StatusProcessing DocumentStatus = "processing"
	// StatusFailed is set when an upstream conversion failed.
	StatusFailed DocumentStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusActive, StatusProcessing, StatusFailed:
		return true
	}
	return false
}

// Sensitivity bounds and default for documents.
const (
	MinSensitivity     = 1
	MaxSensitivity     = 5
	DefaultSensitivity = 3
)

// Document is the canonical per-document metadata record.
// This is a pure domain model with no database-specific dependencies or tags.
// OwnerUserID and OrganizationID are immutable after creation and define the
// ownership/tenancy boundary; Version increases by exactly 1 on every update.
type Document struct {
	ID             string         `json:"id"`
	OwnerUserID    string         `json:"owner_user_id"`
	OrganizationID string         `json:"organization_id"`
	FileName       string         `json:"file_name"`
	FileExtension  string         `json:"file_extension"`
	Location       string         `json:"location"`
	Category       string         `json:"category,omitempty"`
	Sensitivity    int            `json:"sensitivity"`
	ExpiryDate     *time.Time     `json:"expiry_date,omitempty"`
	Version        int            `json:"version"`
	Status         DocumentStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

package dto

import "github.com/ebhath/ebhath-api/internal/models"

// CreateFormSessionRequest opens a wizard session for one application track.
type CreateFormSessionRequest struct {
	Type models.ApplicationType `json:"type" validate:"required,oneof=member mentor"`
}

// UpdateFormFieldsRequest applies field edits by name.
type UpdateFormFieldsRequest struct {
	Fields map[string]string `json:"fields" validate:"required,min=1"`
}

package dto

// IntakeResponse is the body returned by the application intake endpoint. It keeps the
// flat success/error shape existing clients of the endpoint expect.
type IntakeResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

package dto

// ContactRequest is the payload of the contact form.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,appemail,max=320"`
	Subject string `json:"subject" validate:"required,max=300"`
	Message string `json:"message" validate:"required,max=5000"`
}

// ContactResponse acknowledges a stored message.
type ContactResponse struct {
	ID string `json:"id"`
}

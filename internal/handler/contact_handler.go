package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ebhath/ebhath-api/internal/dto"
	"github.com/ebhath/ebhath-api/internal/models"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
	"github.com/ebhath/ebhath-api/pkg/response"
)

type contactService interface {
	Send(ctx context.Context, req dto.ContactRequest, clientIP string) (*models.ContactMessage, error)
}

// ContactHandler accepts contact page messages.
type ContactHandler struct {
	service contactService
}

// NewContactHandler builds a contact handler.
func NewContactHandler(service contactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// Send godoc
// @Summary Send a contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body dto.ContactRequest true "Message"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /contact [post]
func (h *ContactHandler) Send(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid contact payload"))
		return
	}
	msg, err := h.service.Send(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ContactResponse{ID: msg.ID})
}

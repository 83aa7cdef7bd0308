package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ebhath/ebhath-api/internal/dto"
	"github.com/ebhath/ebhath-api/internal/service"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
)

type intakeService interface {
	Submit(ctx context.Context, payload []byte) (string, error)
}

// IntakeHandler accepts completed applications posted as JSON documents.
type IntakeHandler struct {
	service intakeService
}

// NewIntakeHandler builds an intake handler.
func NewIntakeHandler(service intakeService) *IntakeHandler {
	return &IntakeHandler{service: service}
}

// Submit godoc
// @Summary Store a completed application
// @Tags Applications
// @Accept json
// @Produce json
// @Success 200 {object} dto.IntakeResponse
// @Failure 400 {object} dto.IntakeResponse
// @Failure 500 {object} dto.IntakeResponse
// @Router /api/applications [post]
func (h *IntakeHandler) Submit(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil || len(payload) == 0 {
		c.JSON(http.StatusBadRequest, dto.IntakeResponse{Error: service.MsgIntakeMissingFields})
		return
	}

	id, err := h.service.Submit(c.Request.Context(), payload)
	if err != nil {
		appErr := appErrors.FromError(err)
		_ = c.Error(err)
		c.JSON(appErr.Status, dto.IntakeResponse{Error: appErr.Message})
		return
	}
	c.JSON(http.StatusOK, dto.IntakeResponse{Success: true, ID: id})
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ebhath/ebhath-api/internal/models"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
	"github.com/ebhath/ebhath-api/pkg/response"
)

type contentService interface {
	Site() models.SiteInfo
	Courses(availableOnly bool) []models.Course
	Team() []models.TeamMember
	Testimonials() []models.Testimonial
}

// ContentHandler serves the static site content.
type ContentHandler struct {
	service contentService
}

// NewContentHandler builds a content handler.
func NewContentHandler(service contentService) *ContentHandler {
	return &ContentHandler{service: service}
}

// Site godoc
// @Summary Site copy, mission and contact details
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /content/site [get]
func (h *ContentHandler) Site(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Site())
}

// Courses godoc
// @Summary List courses
// @Tags Content
// @Produce json
// @Param available query bool false "Only courses open for enrolment"
// @Success 200 {object} response.Envelope
// @Router /content/courses [get]
func (h *ContentHandler) Courses(c *gin.Context) {
	availableOnly := false
	if raw := c.Query("available"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "available must be a boolean"))
			return
		}
		availableOnly = parsed
	}
	courses := h.service.Courses(availableOnly)
	response.JSON(c, http.StatusOK, courses, map[string]interface{}{"total": len(courses)})
}

// Team godoc
// @Summary List team members
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /content/team [get]
func (h *ContentHandler) Team(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Team())
}

// Testimonials godoc
// @Summary List testimonials
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /content/testimonials [get]
func (h *ContentHandler) Testimonials(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Testimonials())
}

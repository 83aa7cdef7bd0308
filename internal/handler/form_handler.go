package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ebhath/ebhath-api/internal/dto"
	"github.com/ebhath/ebhath-api/internal/models"
	"github.com/ebhath/ebhath-api/internal/service"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
	"github.com/ebhath/ebhath-api/pkg/response"
)

const workSampleFormField = "file"

type formSessionStore interface {
	Create(appType models.ApplicationType, clientKey string) (*service.CreatedSession, error)
	Resolve(token string) (*service.FormSession, error)
}

type formSessionResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	State     service.FormState `json:"state"`
}

// FormHandler exposes the application wizard.
type FormHandler struct {
	sessions  formSessionStore
	validator *validator.Validate
	maxBytes  int64
	logger    *zap.Logger
}

// NewFormHandler builds a form handler.
func NewFormHandler(sessions formSessionStore, formValidator *service.FormValidator, logger *zap.Logger) *FormHandler {
	if formValidator == nil {
		formValidator = service.NewFormValidator(nil, 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormHandler{
		sessions:  sessions,
		validator: formValidator.Validator(),
		maxBytes:  formValidator.MaxWorkSampleBytes(),
		logger:    logger,
	}
}

// Schema godoc
// @Summary Describe the application wizard
// @Tags Forms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /forms/schema [get]
func (h *FormHandler) Schema(c *gin.Context) {
	response.JSON(c, http.StatusOK, service.BuildFormSchema(h.maxBytes))
}

// Create godoc
// @Summary Open a form session
// @Tags Forms
// @Accept json
// @Produce json
// @Param payload body dto.CreateFormSessionRequest true "Application track"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /forms [post]
func (h *FormHandler) Create(c *gin.Context) {
	var req dto.CreateFormSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form session payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unknown application type"))
		return
	}

	created, err := h.sessions.Create(req.Type, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, formSessionResponse{
		Token:     created.Token,
		ExpiresAt: created.ExpiresAt,
		State:     created.Session.Snapshot(),
	})
}

// Get godoc
// @Summary Get form state
// @Tags Forms
// @Produce json
// @Param token path string true "Form session token"
// @Success 200 {object} response.Envelope
// @Router /forms/{token} [get]
func (h *FormHandler) Get(c *gin.Context) {
	session, ok := h.resolve(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, session.Snapshot())
}

// Update godoc
// @Summary Edit form fields
// @Tags Forms
// @Accept json
// @Produce json
// @Param token path string true "Form session token"
// @Param payload body dto.UpdateFormFieldsRequest true "Field edits"
// @Success 200 {object} response.Envelope
// @Router /forms/{token} [patch]
func (h *FormHandler) Update(c *gin.Context) {
	session, ok := h.resolve(c)
	if !ok {
		return
	}
	var req dto.UpdateFormFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid field payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "no fields to update"))
		return
	}

	state, err := session.SetFields(c.Request.Context(), req.Fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// AttachWorkSample godoc
// @Summary Attach a work sample
// @Tags Forms
// @Accept mpfd
// @Produce json
// @Param token path string true "Form session token"
// @Param file formData file true "PDF, DOC or DOCX"
// @Success 200 {object} response.Envelope
// @Router /forms/{token}/work-sample [put]
func (h *FormHandler) AttachWorkSample(c *gin.Context) {
	session, ok := h.resolve(c)
	if !ok {
		return
	}
	header, err := c.FormFile(workSampleFormField)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "work sample file is required"))
		return
	}

	sample := &models.WorkSample{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
	}
	// Oversized files are kept without content so the size rule reports them.
	if header.Size <= h.maxBytes {
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrFileProcessing.Code, appErrors.ErrFileProcessing.Status, appErrors.ErrFileProcessing.Message))
			return
		}
		defer file.Close()
		content, err := io.ReadAll(io.LimitReader(file, h.maxBytes))
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrFileProcessing.Code, appErrors.ErrFileProcessing.Status, appErrors.ErrFileProcessing.Message))
			return
		}
		sample.Content = content
		sample.MimeType = resolveMimeType(sample.MimeType, content)
	}

	state, err := session.AttachWorkSample(sample)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Debug("work sample attached",
		zap.String("session_id", session.ID()),
		zap.String("mime_type", sample.MimeType),
		zap.Int64("size", sample.Size))
	response.JSON(c, http.StatusOK, state)
}

// DetachWorkSample godoc
// @Summary Remove the work sample
// @Tags Forms
// @Produce json
// @Param token path string true "Form session token"
// @Success 200 {object} response.Envelope
// @Router /forms/{token}/work-sample [delete]
func (h *FormHandler) DetachWorkSample(c *gin.Context) {
	session, ok := h.resolve(c)
	if !ok {
		return
	}
	state, err := session.DetachWorkSample()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// Next godoc
// @Summary Advance the wizard or submit on the last step
// @Tags Forms
// @Produce json
// @Param token path string true "Form session token"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /forms/{token}/next [post]
func (h *FormHandler) Next(c *gin.Context) {
	h.transition(c, func(ctx context.Context, s *service.FormSession) (service.FormState, error) {
		return s.Next(ctx)
	})
}

// Previous godoc
// @Summary Go back one step
// @Tags Forms
// @Produce json
// @Param token path string true "Form session token"
// @Success 200 {object} response.Envelope
// @Router /forms/{token}/previous [post]
func (h *FormHandler) Previous(c *gin.Context) {
	h.transition(c, func(_ context.Context, s *service.FormSession) (service.FormState, error) {
		return s.Previous()
	})
}

func (h *FormHandler) transition(c *gin.Context, move func(context.Context, *service.FormSession) (service.FormState, error)) {
	session, ok := h.resolve(c)
	if !ok {
		return
	}
	state, err := move(c.Request.Context(), session)
	if err != nil {
		if state.SessionID == "" {
			response.Error(c, err)
			return
		}
		meta := map[string]interface{}{"state": state}
		if len(state.FieldErrors) > 0 {
			meta["field_errors"] = state.FieldErrors
		}
		response.Error(c, err, meta)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

func (h *FormHandler) resolve(c *gin.Context) (*service.FormSession, bool) {
	session, err := h.sessions.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return session, true
}

// resolveMimeType trusts a declared type and sniffs the content otherwise.
func resolveMimeType(declared string, content []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	detected := mimetype.Detect(content).String()
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	return detected
}

package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ebhath/ebhath-api/internal/dto"
	"github.com/ebhath/ebhath-api/internal/models"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
)

type contactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
}

// ContactService records contact page messages.
type ContactService struct {
	repo      contactRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContactService constructs the contact service. The validator must carry the
// appemail rule registered by NewFormValidator.
func NewContactService(repo contactRepository, validate *validator.Validate, logger *zap.Logger) *ContactService {
	if validate == nil {
		validate = NewFormValidator(nil, 0).Validator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{repo: repo, validator: validate, logger: logger}
}

// Send stores a contact message after sanitising its fields.
func (s *ContactService) Send(ctx context.Context, req dto.ContactRequest, clientIP string) (*models.ContactMessage, error) {
	req.Name = SanitizeText(req.Name)
	req.Email = SanitizeText(req.Email)
	req.Subject = SanitizeText(req.Subject)
	req.Message = SanitizeText(req.Message)

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid contact payload")
	}

	msg := &models.ContactMessage{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		IPAddress: clientIP,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		s.logger.Error("store contact message", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}
	return msg, nil
}

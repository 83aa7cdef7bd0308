package service

import (
	"context"
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ebhath/ebhath-api/internal/models"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
)

// Submission failure messages.
const (
	MsgEssayTooShort = "Please provide a more detailed response for the essay question."
	MsgSaveFailed    = "Failed to save application to database."
)

const minEssayChars = 50

var markupPattern = regexp.MustCompile(`<[^>]*>`)

type submissionLimiter interface {
	Allowed() bool
	Record() error
}

type submissionObserver interface {
	RecordSubmission(outcome string)
}

// SubmissionRequest carries one terminal submission.
type SubmissionRequest struct {
	Draft   models.ApplicationDraft
	Type    models.ApplicationType
	Limiter submissionLimiter
}

// SubmissionService turns a completed form into a pending application document.
type SubmissionService struct {
	store    applicationDocumentStore
	observer submissionObserver
	logger   *zap.Logger
	now      func() time.Time
}

// NewSubmissionService constructs the submission pipeline.
func NewSubmissionService(store applicationDocumentStore, observer submissionObserver, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{store: store, observer: observer, logger: logger, now: time.Now}
}

// Submit runs the pipeline: rate-limit gate, sanitisation, work sample encoding,
// essay length check, then an overwriting write with status pending. The ledger is
// updated only after the write succeeds.
func (s *SubmissionService) Submit(ctx context.Context, req SubmissionRequest) (*models.ApplicationDocument, error) {
	if req.Limiter != nil && !req.Limiter.Allowed() {
		s.record("rate_limited")
		return nil, appErrors.ErrRateLimited
	}

	draft := SanitizeDraft(req.Draft)

	sample, err := EncodeWorkSample(draft.WorkSample)
	if err != nil {
		s.logger.Warn("encode work sample", zap.Error(err))
		s.record("file_error")
		return nil, appErrors.Wrap(err, appErrors.ErrFileProcessing.Code, appErrors.ErrFileProcessing.Status, appErrors.ErrFileProcessing.Message)
	}

	if len([]rune(draft.Essay)) < minEssayChars {
		s.record("invalid")
		return nil, appErrors.Clone(appErrors.ErrValidation, MsgEssayTooShort)
	}

	now := s.now().UTC()
	doc := DocumentFromDraft(draft, sample, req.Type)
	doc.Metadata.Status = models.ApplicationStatusPending
	doc.Metadata.SubmittedAt = &now
	doc.Metadata.CreatedAt = &now

	if err := s.store.Put(ctx, draft.Email, doc); err != nil {
		s.logger.Error("save application", zap.String("application_type", string(req.Type)), zap.Error(err))
		s.record("store_error")
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, MsgSaveFailed)
	}

	if req.Limiter != nil {
		if err := req.Limiter.Record(); err != nil {
			s.logger.Warn("record submission", zap.Error(err))
		}
	}

	s.record("success")
	s.logger.Info("application submitted", zap.String("application_type", string(req.Type)))
	return doc, nil
}

func (s *SubmissionService) record(outcome string) {
	if s.observer != nil {
		s.observer.RecordSubmission(outcome)
	}
}

// SanitizeText strips markup tags and surrounding whitespace.
func SanitizeText(input string) string {
	return strings.TrimSpace(markupPattern.ReplaceAllString(input, ""))
}

// SanitizeDraft returns a copy of draft with its free-text fields sanitised.
func SanitizeDraft(draft models.ApplicationDraft) models.ApplicationDraft {
	draft.FirstName = SanitizeText(draft.FirstName)
	draft.LastName = SanitizeText(draft.LastName)
	draft.Citizenship = SanitizeText(draft.Citizenship)
	draft.PhoneNumber = SanitizeText(draft.PhoneNumber)
	draft.CollegeName = SanitizeText(draft.CollegeName)
	draft.ResearchExperience = SanitizeText(draft.ResearchExperience)
	draft.Commitments = SanitizeText(draft.Commitments)
	draft.Essay = SanitizeText(draft.Essay)
	return draft
}

var errWorkSampleIncomplete = errors.New("work sample content incomplete")

// EncodeWorkSample base64-encodes an attached file. A nil sample encodes to nil.
func EncodeWorkSample(sample *models.WorkSample) (*models.EncodedWorkSample, error) {
	if sample == nil {
		return nil, nil
	}
	if sample.Content == nil || int64(len(sample.Content)) != sample.Size {
		return nil, errWorkSampleIncomplete
	}
	return &models.EncodedWorkSample{
		Filename: sample.Filename,
		Type:     sample.MimeType,
		Data:     base64.StdEncoding.EncodeToString(sample.Content),
	}, nil
}

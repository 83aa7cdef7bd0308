package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/ebhath/ebhath-api/internal/models"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
)

// Intake failure messages returned to callers.
const (
	MsgIntakeAuthFailed     = "Database authentication failed"
	MsgIntakeUnreachable    = "Unable to connect to the database"
	MsgIntakeTableMissing   = "Database table not found"
	MsgIntakeMissingFields  = "Missing required fields"
	MsgIntakeUnexpected     = "An unexpected error occurred"
	intakeErrorCode         = "INTAKE_FAILED"
	intakeSchemaDescription = "application intake payload"
)

const intakeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "` + intakeSchemaDescription + `",
  "type": "object",
  "required": ["personal_info", "research_preferences", "commitments", "essay", "metadata"],
  "properties": {
    "personal_info": {"type": "object"},
    "research_preferences": {"type": "object"},
    "commitments": {"type": "object"},
    "essay": {"type": "string"},
    "metadata": {"type": "object"}
  }
}`

type applicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
}

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// IntakeService stores raw application payloads posted to the intake endpoint.
type IntakeService struct {
	repo     applicationRepository
	schema   *gojsonschema.Schema
	observer queryObserver
	logger   *zap.Logger
}

// NewIntakeService constructs the intake service.
func NewIntakeService(repo applicationRepository, observer queryObserver, logger *zap.Logger) (*IntakeService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(intakeSchema))
	if err != nil {
		return nil, fmt.Errorf("compile intake schema: %w", err)
	}
	return &IntakeService{repo: repo, schema: schema, observer: observer, logger: logger}, nil
}

// Submit checks the payload shape and inserts it, returning the new application id.
func (s *IntakeService) Submit(ctx context.Context, payload []byte) (string, error) {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, MsgIntakeMissingFields)
	}
	if !result.Valid() {
		problems := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			problems[i] = desc.String()
		}
		s.logger.Info("intake payload rejected", zap.Strings("problems", problems))
		return "", appErrors.Clone(appErrors.ErrValidation, MsgIntakeMissingFields)
	}

	var body struct {
		PersonalInfo        json.RawMessage `json:"personal_info"`
		ResearchPreferences json.RawMessage `json:"research_preferences"`
		Commitments         json.RawMessage `json:"commitments"`
		Essay               string          `json:"essay"`
		Metadata            json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, MsgIntakeMissingFields)
	}

	app := &models.Application{
		PersonalInfo:        types.JSONText(body.PersonalInfo),
		ResearchPreferences: types.JSONText(body.ResearchPreferences),
		Commitments:         types.JSONText(body.Commitments),
		Essay:               body.Essay,
		Metadata:            types.JSONText(body.Metadata),
	}

	start := time.Now()
	err = s.repo.Create(ctx, app)
	if s.observer != nil {
		s.observer.ObserveDBQuery("insert_application", time.Since(start))
	}
	if err != nil {
		mapped := MapIntakeError(err)
		s.logger.Error("intake insert failed", zap.String("message", mapped.Message), zap.Error(err))
		return "", mapped
	}

	s.logger.Info("application received", zap.String("application_id", app.ID))
	return app.ID, nil
}

// MapIntakeError translates a database failure into the message shown to callers.
func MapIntakeError(err error) *appErrors.Error {
	status := http.StatusInternalServerError
	message := MsgIntakeUnexpected

	var pqErr *pq.Error
	var netErr net.Error
	switch {
	case errors.As(err, &pqErr):
		switch pqErr.Code {
		case "28P01":
			message = MsgIntakeAuthFailed
		case "08001":
			message = MsgIntakeUnreachable
			status = http.StatusServiceUnavailable
		case "42P01":
			message = MsgIntakeTableMissing
		case "23502":
			message = MsgIntakeMissingFields
		}
	case errors.As(err, &netErr), isConnectionRefused(err):
		message = MsgIntakeUnreachable
		status = http.StatusServiceUnavailable
	}
	return appErrors.Wrap(err, intakeErrorCode, status, message)
}

func isConnectionRefused(err error) bool {
	return err != nil && strings.Contains(err.Error(), "connection refused")
}

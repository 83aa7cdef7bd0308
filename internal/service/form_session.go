package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ebhath/ebhath-api/internal/models"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
)

// SubmitStatus is the outcome of the latest terminal submission attempt.
type SubmitStatus string

const (
	SubmitIdle       SubmitStatus = "idle"
	SubmitSubmitting SubmitStatus = "submitting"
	SubmitSuccess    SubmitStatus = "success"
	SubmitError      SubmitStatus = "error"
)

type formSubmitter interface {
	Submit(ctx context.Context, req SubmissionRequest) (*models.ApplicationDocument, error)
}

// FormState is a point-in-time view of a session, safe to serialise.
type FormState struct {
	SessionID      string                  `json:"session_id"`
	Type           models.ApplicationType  `json:"type"`
	Draft          models.ApplicationDraft `json:"draft"`
	Step           int                     `json:"step"`
	StepCount      int                     `json:"step_count"`
	StepTitle      string                  `json:"step_title"`
	StepError      string                  `json:"step_error,omitempty"`
	FieldErrors    map[string]string       `json:"field_errors,omitempty"`
	AutosaveStatus AutosaveStatus          `json:"autosave_status"`
	DraftLoaded    bool                    `json:"draft_loaded"`
	SubmitStatus   SubmitStatus            `json:"submit_status"`
	SubmitError    string                  `json:"submit_error,omitempty"`
	LastActive     time.Time               `json:"last_active"`
}

// FormSessionDeps groups the collaborators of a form session.
type FormSessionDeps struct {
	Validator *FormValidator
	Local     *LocalDraftStore
	Remote    *RemoteDraftSync
	Limiter   submissionLimiter
	Submitter formSubmitter
	Logger    *zap.Logger
}

// FormSession is one applicant's pass through the wizard. It owns the draft and the
// current step; mutations are serialised under its mutex and remote I/O happens
// outside it.
type FormSession struct {
	id        string
	clientKey string
	appType   models.ApplicationType

	validator *FormValidator
	local     *LocalDraftStore
	remote    *RemoteDraftSync
	limiter   submissionLimiter
	submitter formSubmitter
	logger    *zap.Logger
	now       func() time.Time

	mu           sync.Mutex
	draft        models.ApplicationDraft
	step         int
	stepError    string
	submitStatus SubmitStatus
	submitError  string
	lastActive   time.Time
	closed       bool
}

// NewFormSession builds a session and restores any local draft.
func NewFormSession(id, clientKey string, appType models.ApplicationType, deps FormSessionDeps) *FormSession {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FormSession{
		id:           id,
		clientKey:    clientKey,
		appType:      appType,
		validator:    deps.Validator,
		local:        deps.Local,
		remote:       deps.Remote,
		limiter:      deps.Limiter,
		submitter:    deps.Submitter,
		logger:       logger.With(zap.String("session_id", id)),
		now:          time.Now,
		step:         1,
		submitStatus: SubmitIdle,
	}
	s.lastActive = s.now()

	if s.local != nil {
		if draft, step, ok := s.local.Load(); ok {
			s.draft = draft
			s.step = step
		}
	}
	return s
}

// ID returns the session identifier.
func (s *FormSession) ID() string { return s.id }

// ClientKey returns the client the session belongs to.
func (s *FormSession) ClientKey() string { return s.clientKey }

// Type returns the application track of the session.
func (s *FormSession) Type() models.ApplicationType { return s.appType }

// LastActive returns the time of the latest interaction.
func (s *FormSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Snapshot returns the current state.
func (s *FormSession) Snapshot() FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// SetFields applies field edits, persists the draft locally and schedules an autosave.
// When the email changes, a saved remote draft is looked up and, if found, replaces the
// local values.
func (s *FormSession) SetFields(ctx context.Context, fields map[string]string) (FormState, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return FormState{}, err
	}
	for _, name := range names {
		if _, ok := s.draft.Field(name); !ok {
			s.mu.Unlock()
			return FormState{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown field %q", name))
		}
	}
	previousEmail := s.draft.Email
	for _, name := range names {
		_ = s.draft.SetField(name, fields[name])
	}
	s.touchLocked()
	email := s.draft.Email
	s.persistLocked()
	s.scheduleAutosaveLocked()
	s.mu.Unlock()

	if email != previousEmail && s.remote != nil {
		if restored, ok := s.remote.LoadDraftOnce(ctx, email); ok {
			s.applyRemote(restored)
		}
	}
	return s.Snapshot(), nil
}

func (s *FormSession) applyRemote(restored *RemoteDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	incoming := restored.Draft
	incoming.Email = s.draft.Email
	incoming.WorkSample = s.draft.WorkSample
	s.draft = incoming
	if restored.Step >= 1 && restored.Step <= StepCount {
		s.step = restored.Step
	}
	s.logger.Info("remote draft restored", zap.Int("step", s.step))
	s.persistLocked()
	s.scheduleAutosaveLocked()
}

// AttachWorkSample sets the work sample. Invalid files are kept and reported through
// the field errors, blocking the step until replaced.
func (s *FormSession) AttachWorkSample(sample *models.WorkSample) (FormState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpenLocked(); err != nil {
		return FormState{}, err
	}
	s.draft.WorkSample = sample
	s.touchLocked()
	s.persistLocked()
	s.scheduleAutosaveLocked()
	return s.stateLocked(), nil
}

// DetachWorkSample removes the work sample.
func (s *FormSession) DetachWorkSample() (FormState, error) {
	return s.AttachWorkSample(nil)
}

// Next advances one step when the current step validates. On the last step it runs the
// submission pipeline instead.
func (s *FormSession) Next(ctx context.Context) (FormState, error) {
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return FormState{}, err
	}
	if s.submitStatus == SubmitSubmitting {
		s.mu.Unlock()
		return FormState{}, appErrors.ErrSubmissionInFlight
	}
	s.touchLocked()

	if ok, msg := s.validator.ValidateStep(s.step, &s.draft); !ok {
		s.stepError = msg
		state := s.stateLocked()
		s.mu.Unlock()
		return state, appErrors.Clone(appErrors.ErrValidation, msg)
	}
	s.stepError = ""

	if s.step < StepCount {
		s.step++
		s.persistLocked()
		state := s.stateLocked()
		s.mu.Unlock()
		return state, nil
	}

	s.submitStatus = SubmitSubmitting
	s.submitError = ""
	req := SubmissionRequest{Draft: s.draft, Type: s.appType, Limiter: s.limiter}
	s.mu.Unlock()

	_, err := s.submitter.Submit(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.submitStatus = SubmitError
		s.submitError = appErrors.FromError(err).Message
		return s.stateLocked(), err
	}

	s.submitStatus = SubmitSuccess
	s.draft = models.ApplicationDraft{}
	s.step = 1
	if s.remote != nil {
		s.remote.Cancel()
	}
	if s.local != nil {
		if err := s.local.Clear(); err != nil {
			s.logger.Warn("clear local draft", zap.Error(err))
		}
	}
	return s.stateLocked(), nil
}

// Previous moves back one step, never below the first.
func (s *FormSession) Previous() (FormState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpenLocked(); err != nil {
		return FormState{}, err
	}
	if s.step > 1 {
		s.step--
	}
	s.stepError = ""
	s.touchLocked()
	s.persistLocked()
	return s.stateLocked(), nil
}

// FlushAutosave performs a waiting autosave immediately.
func (s *FormSession) FlushAutosave() bool {
	if s.remote == nil {
		return false
	}
	return s.remote.Flush()
}

// Close stops pending autosaves. Writes already in flight complete.
func (s *FormSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if s.remote != nil {
		s.remote.Stop()
	}
}

func (s *FormSession) checkOpenLocked() error {
	if s.closed {
		return appErrors.ErrInvalidSession
	}
	return nil
}

func (s *FormSession) touchLocked() {
	s.lastActive = s.now()
}

func (s *FormSession) persistLocked() {
	if s.local == nil {
		return
	}
	if err := s.local.Save(s.draft, s.step); err != nil {
		s.logger.Warn("save local draft", zap.Error(err))
	}
}

func (s *FormSession) scheduleAutosaveLocked() {
	if s.remote == nil {
		return
	}
	s.remote.AutoSave(s.draft, s.step)
}

func (s *FormSession) stateLocked() FormState {
	state := FormState{
		SessionID:    s.id,
		Type:         s.appType,
		Draft:        s.draft,
		Step:         s.step,
		StepCount:    StepCount,
		StepTitle:    formSteps[s.step-1].Title,
		StepError:    s.stepError,
		SubmitStatus: s.submitStatus,
		SubmitError:  s.submitError,
		LastActive:   s.lastActive,
	}
	if s.draft.WorkSample != nil {
		sample := *s.draft.WorkSample
		sample.Content = nil
		state.Draft.WorkSample = &sample
	}
	if s.validator != nil {
		if errs := s.validator.FieldErrors(s.step, &s.draft); len(errs) > 0 {
			state.FieldErrors = errs
		}
	}
	if s.remote != nil {
		state.AutosaveStatus = s.remote.Status()
		state.DraftLoaded = s.remote.DraftLoaded()
	} else {
		state.AutosaveStatus = AutosaveSaved
	}
	return state
}

package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ebhath/ebhath-api/internal/models"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
)

// AutosaveStatus reports the state of remote draft persistence for a session.
type AutosaveStatus string

const (
	AutosaveLoading AutosaveStatus = "loading"
	AutosaveSaving  AutosaveStatus = "saving"
	AutosaveSaved   AutosaveStatus = "saved"
	AutosaveError   AutosaveStatus = "error"
)

const (
	defaultAutosaveQuietPeriod = 2 * time.Second
	remoteWriteTimeout         = 10 * time.Second
)

type applicationDocumentStore interface {
	Get(ctx context.Context, email string) (*models.ApplicationDocument, error)
	Merge(ctx context.Context, email string, doc *models.ApplicationDocument) error
	Put(ctx context.Context, email string, doc *models.ApplicationDocument) error
}

type draftSyncObserver interface {
	RecordAutosave(success bool)
	RecordDraftRestore()
}

// RemoteDraft is a draft restored from the document store.
type RemoteDraft struct {
	Draft models.ApplicationDraft
	Step  int
}

// RemoteDraftSync mirrors one session's form to the document store. It restores a
// saved draft at most once and debounces autosaves so only the last edit in a quiet
// period is written.
type RemoteDraftSync struct {
	store     applicationDocumentStore
	appType   models.ApplicationType
	debouncer *Debouncer
	observer  draftSyncObserver
	logger    *zap.Logger
	now       func() time.Time

	mu         sync.Mutex
	status     AutosaveStatus
	loaded     bool
	lastLookup string
	inflight   sync.WaitGroup
}

// NewRemoteDraftSync constructs the sync component for one session.
func NewRemoteDraftSync(store applicationDocumentStore, appType models.ApplicationType, quietPeriod time.Duration, observer draftSyncObserver, logger *zap.Logger) *RemoteDraftSync {
	if quietPeriod <= 0 {
		quietPeriod = defaultAutosaveQuietPeriod
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteDraftSync{
		store:     store,
		appType:   appType,
		debouncer: NewDebouncer(quietPeriod),
		observer:  observer,
		logger:    logger,
		now:       time.Now,
		status:    AutosaveSaved,
	}
}

// Status returns the current autosave status.
func (s *RemoteDraftSync) Status() AutosaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// DraftLoaded reports whether a remote draft has been restored in this session.
func (s *RemoteDraftSync) DraftLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *RemoteDraftSync) setStatus(status AutosaveStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// LoadDraftOnce looks up a saved draft for email. It returns the draft to apply when the
// store holds one in draft status and none has been restored yet in this session. The
// same email is looked up only once; lookups for a blank or malformed email are skipped.
func (s *RemoteDraftSync) LoadDraftOnce(ctx context.Context, email string) (*RemoteDraft, bool) {
	email = strings.TrimSpace(email)
	if email == "" || !emailPattern.MatchString(email) {
		return nil, false
	}

	s.mu.Lock()
	if s.loaded || strings.EqualFold(s.lastLookup, email) {
		s.mu.Unlock()
		return nil, false
	}
	s.lastLookup = email
	previous := s.status
	s.status = AutosaveLoading
	s.mu.Unlock()

	doc, err := s.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, appErrors.ErrDocumentNotFound) {
			s.setStatus(previous)
			return nil, false
		}
		s.logger.Warn("load remote draft", zap.Error(err))
		s.mu.Lock()
		s.status = AutosaveError
		s.lastLookup = ""
		s.mu.Unlock()
		return nil, false
	}

	if doc.Metadata.Status != models.ApplicationStatusDraft {
		s.setStatus(previous)
		return nil, false
	}

	s.mu.Lock()
	s.loaded = true
	s.status = AutosaveSaved
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.RecordDraftRestore()
	}
	return &RemoteDraft{Draft: DraftFromDocument(doc), Step: doc.Metadata.CurrentStep}, true
}

// AutoSave schedules a merge of the draft into the document store after the quiet
// period, replacing any save still waiting. Drafts without an email are not saved.
func (s *RemoteDraftSync) AutoSave(draft models.ApplicationDraft, step int) {
	draft = draft.WithoutFile()
	s.debouncer.Schedule(func() {
		s.save(draft, step)
	})
}

// Flush performs a waiting autosave immediately.
func (s *RemoteDraftSync) Flush() bool {
	return s.debouncer.Flush()
}

// Pending reports whether an autosave is waiting for its quiet period.
func (s *RemoteDraftSync) Pending() bool {
	return s.debouncer.Pending()
}

// Cancel drops a waiting autosave.
func (s *RemoteDraftSync) Cancel() {
	s.debouncer.Cancel()
}

// Stop cancels the pending autosave and disables further ones. A write already in
// flight completes.
func (s *RemoteDraftSync) Stop() {
	s.debouncer.Stop()
}

// Wait blocks until in-flight autosaves finish.
func (s *RemoteDraftSync) Wait() {
	s.inflight.Wait()
}

func (s *RemoteDraftSync) save(draft models.ApplicationDraft, step int) {
	email := strings.TrimSpace(draft.Email)
	if email == "" {
		return
	}

	s.inflight.Add(1)
	defer s.inflight.Done()

	s.setStatus(AutosaveSaving)

	now := s.now().UTC()
	doc := DocumentFromDraft(draft, nil, s.appType)
	doc.Metadata.Status = models.ApplicationStatusDraft
	doc.Metadata.CurrentStep = step
	doc.Metadata.LastModified = &now

	ctx, cancel := context.WithTimeout(context.Background(), remoteWriteTimeout)
	defer cancel()

	if err := s.store.Merge(ctx, email, doc); err != nil {
		s.logger.Warn("autosave draft", zap.Error(err))
		s.setStatus(AutosaveError)
		if s.observer != nil {
			s.observer.RecordAutosave(false)
		}
		return
	}

	s.setStatus(AutosaveSaved)
	if s.observer != nil {
		s.observer.RecordAutosave(true)
	}
}

// DocumentFromDraft maps form fields onto the remote document schema.
func DocumentFromDraft(draft models.ApplicationDraft, sample *models.EncodedWorkSample, appType models.ApplicationType) *models.ApplicationDocument {
	return &models.ApplicationDocument{
		PersonalInfo: models.PersonalInfo{
			FirstName:   draft.FirstName,
			LastName:    draft.LastName,
			DateOfBirth: draft.DateOfBirth,
			Gender:      draft.Gender,
			Email:       draft.Email,
			Citizenship: draft.Citizenship,
			PhoneNumber: draft.PhoneNumber,
			CollegeName: draft.CollegeName,
			GradeLevel:  draft.GradeLevel,
		},
		ResearchPreferences: models.ResearchPreferences{
			FirstChoice:        draft.FirstChoice,
			SecondChoice:       draft.SecondChoice,
			ThirdChoice:        draft.ThirdChoice,
			ResearchExperience: draft.ResearchExperience,
		},
		Commitments: models.Commitments{
			Details:      draft.Commitments,
			HoursPerWeek: parseHours(draft.HoursPerWeek),
			WorkSample:   sample,
		},
		Essay: draft.Essay,
		Metadata: models.DocumentMetadata{
			ApplicationType: appType,
			SubmittedFrom:   models.SubmittedFromWeb,
		},
	}
}

// DraftFromDocument maps a remote document back onto form fields. Email is taken from the
// document; zero hours restore as blank.
func DraftFromDocument(doc *models.ApplicationDocument) models.ApplicationDraft {
	hours := ""
	if doc.Commitments.HoursPerWeek != 0 {
		hours = strconv.FormatFloat(doc.Commitments.HoursPerWeek, 'f', -1, 64)
	}
	return models.ApplicationDraft{
		FirstName:          doc.PersonalInfo.FirstName,
		LastName:           doc.PersonalInfo.LastName,
		DateOfBirth:        doc.PersonalInfo.DateOfBirth,
		Gender:             doc.PersonalInfo.Gender,
		Email:              doc.PersonalInfo.Email,
		Citizenship:        doc.PersonalInfo.Citizenship,
		PhoneNumber:        doc.PersonalInfo.PhoneNumber,
		CollegeName:        doc.PersonalInfo.CollegeName,
		GradeLevel:         doc.PersonalInfo.GradeLevel,
		FirstChoice:        doc.ResearchPreferences.FirstChoice,
		SecondChoice:       doc.ResearchPreferences.SecondChoice,
		ThirdChoice:        doc.ResearchPreferences.ThirdChoice,
		ResearchExperience: doc.ResearchPreferences.ResearchExperience,
		Commitments:        doc.Commitments.Details,
		HoursPerWeek:       hours,
		Essay:              doc.Essay,
	}
}

func parseHours(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return f
}

package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ebhath/ebhath-api/internal/models"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
	"github.com/ebhath/ebhath-api/pkg/storage"
)

type sessionObserver interface {
	draftSyncObserver
	SetActiveSessions(n int)
}

type staleFileCleaner interface {
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// SessionManagerConfig tunes form session behaviour.
type SessionManagerConfig struct {
	IdleTTL              time.Duration
	CleanupInterval      time.Duration
	AutosaveQuietPeriod  time.Duration
	MaxSubmissions       int
	SubmissionWindow     time.Duration
	OpenApplicationTypes []string
}

// SessionManagerDeps groups the collaborators shared by all sessions.
type SessionManagerDeps struct {
	Slots     storage.SlotProvider
	Cleaner   staleFileCleaner
	Cipher    payloadSealer
	Documents applicationDocumentStore
	Submitter formSubmitter
	Validator *FormValidator
	Tokens    *SessionTokenSigner
	Observer  sessionObserver
	Logger    *zap.Logger
}

// CreatedSession is returned when a session is opened.
type CreatedSession struct {
	Token     string
	ExpiresAt time.Time
	Session   *FormSession
}

// SessionManager opens, resolves and evicts form sessions.
type SessionManager struct {
	cfg  SessionManagerConfig
	deps SessionManagerDeps
	open map[models.ApplicationType]struct{}
	log  *zap.Logger
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*FormSession
}

// NewSessionManager constructs a session manager.
func NewSessionManager(cfg SessionManagerConfig, deps SessionManagerDeps) *SessionManager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 72 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = NewFormValidator(nil, 0)
	}

	open := make(map[models.ApplicationType]struct{}, len(cfg.OpenApplicationTypes))
	for _, t := range cfg.OpenApplicationTypes {
		open[models.ApplicationType(strings.ToLower(strings.TrimSpace(t)))] = struct{}{}
	}

	return &SessionManager{
		cfg:      cfg,
		deps:     deps,
		open:     open,
		log:      logger,
		now:      time.Now,
		sessions: make(map[string]*FormSession),
	}
}

// IsOpen reports whether applications of the given type are accepted.
func (m *SessionManager) IsOpen(appType models.ApplicationType) bool {
	_, ok := m.open[appType]
	return ok
}

// Create opens a session for a client and returns its token.
func (m *SessionManager) Create(appType models.ApplicationType, clientKey string) (*CreatedSession, error) {
	if !appType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown application type")
	}
	if !m.IsOpen(appType) {
		return nil, appErrors.ErrApplicationsClosed
	}

	id := uuid.NewString()
	token, expiresAt, err := m.deps.Tokens.Issue(id, clientKey, appType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open form session")
	}

	session := m.build(id, clientKey, appType)
	m.mu.Lock()
	m.sessions[id] = session
	count := len(m.sessions)
	m.mu.Unlock()
	m.reportActive(count)

	m.log.Info("form session opened", zap.String("session_id", id), zap.String("application_type", string(appType)))
	return &CreatedSession{Token: token, ExpiresAt: expiresAt, Session: session}, nil
}

// Resolve returns the session for a token. Sessions evicted from memory are rebuilt
// from their local draft.
func (m *SessionManager) Resolve(token string) (*FormSession, error) {
	claims, err := m.deps.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	session, ok := m.sessions[claims.SessionID]
	if !ok {
		session = m.build(claims.SessionID, claims.ClientKey, claims.Type)
		m.sessions[claims.SessionID] = session
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		m.reportActive(count)
		m.log.Debug("form session rebuilt", zap.String("session_id", claims.SessionID))
	}
	return session, nil
}

func (m *SessionManager) build(id, clientKey string, appType models.ApplicationType) *FormSession {
	deps := FormSessionDeps{
		Validator: m.deps.Validator,
		Submitter: m.deps.Submitter,
		Logger:    m.log,
	}
	if m.deps.Slots != nil {
		if m.deps.Cipher != nil {
			deps.Local = NewLocalDraftStore(m.deps.Slots.Namespace(draftNamespace(id)), m.deps.Cipher, m.log)
		}
		deps.Limiter = NewSubmissionRateLimiter(m.deps.Slots.Namespace(clientNamespace(clientKey)), m.cfg.MaxSubmissions, m.cfg.SubmissionWindow, m.log)
	}
	if m.deps.Documents != nil {
		var observer draftSyncObserver
		if m.deps.Observer != nil {
			observer = m.deps.Observer
		}
		deps.Remote = NewRemoteDraftSync(m.deps.Documents, appType, m.cfg.AutosaveQuietPeriod, observer, m.log)
	}
	return NewFormSession(id, clientKey, appType, deps)
}

// Active returns the number of sessions held in memory.
func (m *SessionManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle longer than the TTL and removes stale local files.
func (m *SessionManager) Sweep() int {
	cutoff := m.now().Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	var stale []*FormSession
	for id, session := range m.sessions {
		if session.LastActive().Before(cutoff) {
			stale = append(stale, session)
			delete(m.sessions, id)
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	for _, session := range stale {
		session.Close()
	}
	m.reportActive(count)

	if m.deps.Cleaner != nil {
		removed, err := m.deps.Cleaner.CleanupOlderThan(m.cfg.IdleTTL)
		if err != nil {
			m.log.Warn("cleanup local form storage", zap.Error(err))
		} else if len(removed) > 0 {
			m.log.Info("removed stale local form files", zap.Int("count", len(removed)))
		}
	}
	return len(stale)
}

// Run sweeps periodically until ctx is cancelled.
func (m *SessionManager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.log.Info("evicted idle form sessions", zap.Int("count", n))
			}
		}
	}
}

// Shutdown closes every session, stopping pending autosaves.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*FormSession, 0, len(m.sessions))
	for id, session := range m.sessions {
		sessions = append(sessions, session)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
	m.reportActive(0)
}

func (m *SessionManager) reportActive(n int) {
	if m.deps.Observer != nil {
		m.deps.Observer.SetActiveSessions(n)
	}
}

func draftNamespace(sessionID string) string {
	return "draft-" + sessionID
}

func clientNamespace(clientKey string) string {
	if clientKey == "" {
		clientKey = "anonymous"
	}
	return "client-" + clientKey
}

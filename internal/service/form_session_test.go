package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebhath/ebhath-api/internal/models"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
	"github.com/ebhath/ebhath-api/pkg/storage"
)

type sessionFixture struct {
	session  *FormSession
	store    *memoryDocumentStore
	slots    *storage.MemoryStorage
	limiter  *SubmissionRateLimiter
	local    *LocalDraftStore
	observer *countingObserver
}

func newSessionFixture(t *testing.T, store *memoryDocumentStore) *sessionFixture {
	t.Helper()
	if store == nil {
		store = newMemoryDocumentStore()
	}
	slots := storage.NewMemoryStorage()
	observer := &countingObserver{}
	local := NewLocalDraftStore(slots.Namespace("draft-s1"), newTestCipher(t), nil)
	limiter := NewSubmissionRateLimiter(slots.Namespace("client-203.0.113.9"), 3, time.Hour, nil)
	session := NewFormSession("s1", "203.0.113.9", models.ApplicationTypeMentor, FormSessionDeps{
		Validator: NewFormValidator(nil, 0),
		Local:     local,
		Remote:    NewRemoteDraftSync(store, models.ApplicationTypeMentor, time.Hour, observer, nil),
		Limiter:   limiter,
		Submitter: NewSubmissionService(store, observer, nil),
	})
	t.Cleanup(session.Close)
	return &sessionFixture{session: session, store: store, slots: slots, limiter: limiter, local: local, observer: observer}
}

func draftFields(d *models.ApplicationDraft, names ...string) map[string]string {
	fields := make(map[string]string, len(names))
	for _, name := range names {
		if value, ok := d.Field(name); ok {
			fields[name] = value
		}
	}
	return fields
}

func fillAll(t *testing.T, s *FormSession) {
	t.Helper()
	d := completeDraft()
	for step := 1; step <= StepCount; step++ {
		_, err := s.SetFields(context.Background(), draftFields(d, StepFields(step)...))
		require.NoError(t, err)
	}
}

func TestFormSessionStepGate(t *testing.T) {
	fx := newSessionFixture(t, nil)
	ctx := context.Background()
	d := completeDraft()

	fields := draftFields(d, StepFields(1)...)
	fields[models.FieldLastName] = ""
	_, err := fx.session.SetFields(ctx, fields)
	require.NoError(t, err)

	state, err := fx.session.Next(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, 1, state.Step)
	assert.Equal(t, MsgStepIncomplete, state.StepError)
	assert.Equal(t, MsgRequired, state.FieldErrors[models.FieldLastName])

	_, err = fx.session.SetFields(ctx, map[string]string{models.FieldLastName: "Amin"})
	require.NoError(t, err)
	state, err = fx.session.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Step)
	assert.Empty(t, state.StepError)

	state, err = fx.session.Previous()
	require.NoError(t, err)
	assert.Equal(t, 1, state.Step)

	state, err = fx.session.Previous()
	require.NoError(t, err)
	assert.Equal(t, 1, state.Step)
}

func TestFormSessionRejectsUnknownField(t *testing.T) {
	fx := newSessionFixture(t, nil)

	_, err := fx.session.SetFields(context.Background(), map[string]string{"nickname": "x"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, fx.session.Snapshot().Draft.FirstName)
}

func TestFormSessionPersistsLocallyOnEveryEdit(t *testing.T) {
	fx := newSessionFixture(t, nil)
	ctx := context.Background()

	_, err := fx.session.SetFields(ctx, map[string]string{models.FieldFirstName: "Omar"})
	require.NoError(t, err)

	draft, step, ok := fx.local.Load()
	require.True(t, ok)
	assert.Equal(t, "Omar", draft.FirstName)
	assert.Equal(t, 1, step)

	resumed := NewFormSession("s1", "203.0.113.9", models.ApplicationTypeMentor, FormSessionDeps{
		Validator: NewFormValidator(nil, 0),
		Local:     fx.local,
	})
	assert.Equal(t, "Omar", resumed.Snapshot().Draft.FirstName)
}

func TestFormSessionNewApplicantEndToEnd(t *testing.T) {
	fx := newSessionFixture(t, nil)
	ctx := context.Background()
	email := completeDraft().Email

	fillAll(t, fx.session)
	require.True(t, fx.session.FlushAutosave())

	doc, ok := fx.store.doc(email)
	require.True(t, ok)
	assert.Equal(t, models.ApplicationStatusDraft, doc.Metadata.Status)

	for step := 1; step < StepCount; step++ {
		state, err := fx.session.Next(ctx)
		require.NoError(t, err, "step %d", step)
		assert.Equal(t, step+1, state.Step)
	}

	_, err := fx.session.AttachWorkSample(&models.WorkSample{Filename: "paper.pdf", MimeType: "application/pdf", Size: 5, Content: []byte("%PDF-")})
	require.NoError(t, err)

	state, err := fx.session.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, SubmitSuccess, state.SubmitStatus)
	assert.Equal(t, 1, state.Step)
	assert.Equal(t, models.ApplicationDraft{}, state.Draft)

	doc, ok = fx.store.doc(email)
	require.True(t, ok)
	assert.Equal(t, models.ApplicationStatusPending, doc.Metadata.Status)
	require.NotNil(t, doc.Metadata.SubmittedAt)
	require.NotNil(t, doc.Metadata.CreatedAt)
	require.NotNil(t, doc.Commitments.WorkSample)
	assert.Equal(t, "JVBERi0=", doc.Commitments.WorkSample.Data)
	assert.Equal(t, 15.0, doc.Commitments.HoursPerWeek)

	_, found, err := fx.slots.Namespace("draft-s1").Get(DraftSlot)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, fx.limiter.Count())
	assert.False(t, fx.session.FlushAutosave())
}

func TestFormSessionReturningApplicantRestoredOnce(t *testing.T) {
	store := newMemoryDocumentStore()
	saved := completeDraft()
	saved.FirstName = "Remote"
	store.docs[saved.Email] = *func() *models.ApplicationDocument {
		doc := DocumentFromDraft(*saved, nil, models.ApplicationTypeMentor)
		doc.Metadata.Status = models.ApplicationStatusDraft
		doc.Metadata.CurrentStep = 3
		return doc
	}()
	fx := newSessionFixture(t, store)
	ctx := context.Background()

	state, err := fx.session.SetFields(ctx, map[string]string{models.FieldFirstName: "Local"})
	require.NoError(t, err)
	assert.False(t, state.DraftLoaded)

	state, err = fx.session.SetFields(ctx, map[string]string{models.FieldEmail: saved.Email})
	require.NoError(t, err)
	assert.True(t, state.DraftLoaded)
	assert.Equal(t, 3, state.Step)
	assert.Equal(t, "Remote", state.Draft.FirstName)
	assert.Equal(t, saved.Essay, state.Draft.Essay)

	state, err = fx.session.SetFields(ctx, map[string]string{models.FieldFirstName: "Edited"})
	require.NoError(t, err)
	_, err = fx.session.SetFields(ctx, map[string]string{models.FieldEmail: "other@example.org"})
	require.NoError(t, err)
	_, err = fx.session.SetFields(ctx, map[string]string{models.FieldEmail: saved.Email})
	require.NoError(t, err)

	state = fx.session.Snapshot()
	assert.Equal(t, "Edited", state.Draft.FirstName)
	assert.Equal(t, 1, store.gets)
	assert.Equal(t, 1, fx.observer.restores)

	draft, step, ok := fx.local.Load()
	require.True(t, ok)
	assert.Equal(t, 3, step)
	assert.Equal(t, "Edited", draft.FirstName)
}

func TestFormSessionSubmissionFailuresKeepState(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(t *testing.T, fx *sessionFixture)
		want    string
		puts    int
		ledger  int
	}{
		{
			name: "rate limited",
			prepare: func(t *testing.T, fx *sessionFixture) {
				for i := 0; i < 3; i++ {
					require.NoError(t, fx.limiter.Record())
				}
			},
			want:   appErrors.ErrRateLimited.Message,
			ledger: 3,
		},
		{
			name:    "store failure",
			prepare: func(t *testing.T, fx *sessionFixture) { fx.store.failPut = errors.New("unavailable") },
			want:    MsgSaveFailed,
			puts:    1,
		},
		{
			name: "file unreadable",
			prepare: func(t *testing.T, fx *sessionFixture) {
				_, err := fx.session.AttachWorkSample(&models.WorkSample{Filename: "a.pdf", MimeType: "application/pdf", Size: 10})
				require.NoError(t, err)
			},
			want: appErrors.ErrFileProcessing.Message,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newSessionFixture(t, nil)
			ctx := context.Background()
			fillAll(t, fx.session)
			for step := 1; step < StepCount; step++ {
				_, err := fx.session.Next(ctx)
				require.NoError(t, err)
			}
			tc.prepare(t, fx)
			before := fx.session.Snapshot()

			state, err := fx.session.Next(ctx)
			require.Error(t, err)
			assert.Equal(t, SubmitError, state.SubmitStatus)
			assert.Equal(t, tc.want, state.SubmitError)
			assert.Equal(t, StepCount, state.Step)
			assert.Equal(t, before.Draft, state.Draft)
			assert.Equal(t, tc.puts, fx.store.puts)
			assert.Equal(t, tc.ledger, fx.limiter.Count())
		})
	}
}

func TestSubmissionServiceEssayAndSanitising(t *testing.T) {
	store := newMemoryDocumentStore()
	svc := NewSubmissionService(store, nil, nil)
	ctx := context.Background()

	draft := *completeDraft()
	draft.Essay = "<p>" + "short essay" + "</p>"
	_, err := svc.Submit(ctx, SubmissionRequest{Draft: draft, Type: models.ApplicationTypeMentor})
	require.Error(t, err)
	assert.Equal(t, MsgEssayTooShort, appErrors.FromError(err).Message)

	draft = *completeDraft()
	draft.FirstName = "  <script>x</script>Jake "
	doc, err := svc.Submit(ctx, SubmissionRequest{Draft: draft, Type: models.ApplicationTypeMentor})
	require.NoError(t, err)
	assert.Equal(t, "xJake", doc.PersonalInfo.FirstName)
	assert.Nil(t, doc.Commitments.WorkSample)
	assert.Equal(t, models.ApplicationStatusPending, doc.Metadata.Status)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeText("  <b>hello</b> world\n"))
	assert.Equal(t, "a > b", SanitizeText("a > b"))
	assert.Equal(t, "", SanitizeText("<br/>"))
}

func TestSubmissionKeepsFractionalHours(t *testing.T) {
	store := newMemoryDocumentStore()
	draft := *completeDraft()
	draft.HoursPerWeek = "10.5"

	doc, err := NewSubmissionService(store, nil, nil).Submit(context.Background(), SubmissionRequest{Draft: draft, Type: models.ApplicationTypeMentor})
	require.NoError(t, err)
	assert.Equal(t, 10.5, doc.Commitments.HoursPerWeek)

	stored, ok := store.doc(draft.Email)
	require.True(t, ok)
	assert.Equal(t, 10.5, stored.Commitments.HoursPerWeek)
	assert.Equal(t, models.ApplicationStatusPending, stored.Metadata.Status)
}

package service

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ebhath/ebhath-api/internal/models"
	"github.com/ebhath/ebhath-api/pkg/storage"
)

// DraftSlot is the slot holding the encrypted local draft.
const DraftSlot = "form_data_backup"

type payloadSealer interface {
	Seal(plaintext []byte) (string, error)
	Open(armored string) ([]byte, error)
}

type draftPayload struct {
	FormData    models.ApplicationDraft `json:"formData"`
	CurrentStep int                     `json:"currentStep"`
}

// LocalDraftStore keeps an encrypted copy of the in-progress form so a session can be
// resumed. File contents are never written.
type LocalDraftStore struct {
	slots  storage.Slots
	cipher payloadSealer
	logger *zap.Logger
}

// NewLocalDraftStore constructs a draft store over one slot area.
func NewLocalDraftStore(slots storage.Slots, cipher payloadSealer, logger *zap.Logger) *LocalDraftStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalDraftStore{slots: slots, cipher: cipher, logger: logger}
}

// Save overwrites the stored draft with the given form state.
func (s *LocalDraftStore) Save(draft models.ApplicationDraft, step int) error {
	raw, err := json.Marshal(draftPayload{FormData: draft.WithoutFile(), CurrentStep: step})
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	sealed, err := s.cipher.Seal(raw)
	if err != nil {
		return fmt.Errorf("encrypt draft: %w", err)
	}
	if err := s.slots.Set(DraftSlot, sealed); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

// Load returns the stored draft and step. Missing, undecryptable or malformed payloads
// all report ok=false.
func (s *LocalDraftStore) Load() (models.ApplicationDraft, int, bool) {
	sealed, found, err := s.slots.Get(DraftSlot)
	if err != nil {
		s.logger.Warn("read local draft", zap.Error(err))
		return models.ApplicationDraft{}, 0, false
	}
	if !found || sealed == "" {
		return models.ApplicationDraft{}, 0, false
	}

	raw, err := s.cipher.Open(sealed)
	if err != nil {
		s.logger.Warn("decrypt local draft", zap.Error(err))
		return models.ApplicationDraft{}, 0, false
	}

	var payload draftPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.logger.Warn("decode local draft", zap.Error(err))
		return models.ApplicationDraft{}, 0, false
	}

	step := payload.CurrentStep
	if step < 1 || step > StepCount {
		step = 1
	}
	return payload.FormData.WithoutFile(), step, true
}

// Clear removes the stored draft.
func (s *LocalDraftStore) Clear() error {
	if err := s.slots.Remove(DraftSlot); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

package service

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ebhath/ebhath-api/pkg/storage"
)

// RateLimitSlot holds the JSON array of recent submission times in Unix milliseconds.
const RateLimitSlot = "form_submissions"

const (
	defaultMaxSubmissions   = 3
	defaultSubmissionWindow = time.Hour
)

// SubmissionRateLimiter caps terminal submissions per client within a sliding window.
// Allowed and Record are separate calls; concurrent submitters can both pass the check.
type SubmissionRateLimiter struct {
	slots  storage.Slots
	limit  int
	window time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewSubmissionRateLimiter constructs a limiter over one client's slot area.
func NewSubmissionRateLimiter(slots storage.Slots, limit int, window time.Duration, logger *zap.Logger) *SubmissionRateLimiter {
	if limit <= 0 {
		limit = defaultMaxSubmissions
	}
	if window <= 0 {
		window = defaultSubmissionWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionRateLimiter{slots: slots, limit: limit, window: window, now: time.Now, logger: logger}
}

// WithClock replaces the time source.
func (l *SubmissionRateLimiter) WithClock(now func() time.Time) *SubmissionRateLimiter {
	if now != nil {
		l.now = now
	}
	return l
}

// Allowed reports whether another submission fits in the current window.
func (l *SubmissionRateLimiter) Allowed() bool {
	return len(l.recent()) < l.limit
}

// Record appends the current time to the ledger.
func (l *SubmissionRateLimiter) Record() error {
	stamps := append(l.recent(), l.now().UnixMilli())
	raw, err := json.Marshal(stamps)
	if err != nil {
		return fmt.Errorf("encode submission ledger: %w", err)
	}
	if err := l.slots.Set(RateLimitSlot, string(raw)); err != nil {
		return fmt.Errorf("write submission ledger: %w", err)
	}
	return nil
}

// Count returns the number of submissions inside the window.
func (l *SubmissionRateLimiter) Count() int {
	return len(l.recent())
}

func (l *SubmissionRateLimiter) recent() []int64 {
	raw, found, err := l.slots.Get(RateLimitSlot)
	if err != nil {
		l.logger.Warn("read submission ledger", zap.Error(err))
		return nil
	}
	if !found || raw == "" {
		return nil
	}

	var stamps []int64
	if err := json.Unmarshal([]byte(raw), &stamps); err != nil {
		l.logger.Warn("decode submission ledger", zap.Error(err))
		return nil
	}

	now := l.now().UnixMilli()
	window := l.window.Milliseconds()
	kept := stamps[:0]
	for _, ts := range stamps {
		if now-ts < window {
			kept = append(kept, ts)
		}
	}
	return kept
}

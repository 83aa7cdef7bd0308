package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebhath/ebhath-api/internal/models"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	signer, err := NewSessionTokenSigner("secret", time.Hour)
	require.NoError(t, err)

	token, expires, err := signer.Issue("sid-1", "192.0.2.1", models.ApplicationTypeMentor)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.Equal(t, "192.0.2.1", claims.ClientKey)
	assert.Equal(t, models.ApplicationTypeMentor, claims.Type)
}

func TestSessionTokenRejections(t *testing.T) {
	signer, err := NewSessionTokenSigner("secret", time.Hour)
	require.NoError(t, err)
	token, _, err := signer.Issue("sid-1", "ip", models.ApplicationTypeMentor)
	require.NoError(t, err)

	other, err := NewSessionTokenSigner("other-secret", time.Hour)
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidSession)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = signer.Parse(token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidSession)

	_, err = signer.Parse("garbage")
	assert.ErrorIs(t, err, appErrors.ErrInvalidSession)

	_, err = NewSessionTokenSigner("", time.Hour)
	assert.Error(t, err)
}

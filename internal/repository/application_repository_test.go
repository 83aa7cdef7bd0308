package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebhath/ebhath-api/internal/models"
)

func newSQLMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestApplicationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	created := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO applications (personal_info, research_preferences, commitments, essay, metadata)")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "essay text", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("4b1f0c7e-1111-2222-3333-444455556666", created))

	app := &models.Application{
		PersonalInfo:        types.JSONText(`{"first_name":"Omar"}`),
		ResearchPreferences: types.JSONText(`{}`),
		Commitments:         types.JSONText(`{}`),
		Essay:               "essay text",
		Metadata:            types.JSONText(`{"application_type":"mentor"}`),
	}
	require.NoError(t, repo.Create(context.Background(), app))
	assert.Equal(t, "4b1f0c7e-1111-2222-3333-444455556666", app.ID)
	assert.Equal(t, created, app.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryCreateKeepsDriverError(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("INSERT INTO applications").
		WillReturnError(&pq.Error{Code: "42P01", Message: "relation \"applications\" does not exist"})

	err := repo.Create(context.Background(), &models.Application{})
	require.Error(t, err)

	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, pq.ErrorCode("42P01"), pqErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewContactRepository(db)

	mock.ExpectExec("INSERT INTO contact_messages").
		WithArgs(sqlmock.AnyArg(), "Mohamed", "m@example.org", "Volunteering", "Hello there", "198.51.100.2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	msg := &models.ContactMessage{Name: "Mohamed", Email: "m@example.org", Subject: "Volunteering", Message: "Hello there", IPAddress: "198.51.100.2"}
	require.NoError(t, repo.Create(context.Background(), msg))
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ebhath/ebhath-api/internal/models"
)

// ApplicationRepository persists intake submissions.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts an application. The database assigns the id and created_at.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	const query = `INSERT INTO applications (personal_info, research_preferences, commitments, essay, metadata)
        VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`

	row := r.db.QueryRowxContext(ctx, query, app.PersonalInfo, app.ResearchPreferences, app.Commitments, app.Essay, app.Metadata)
	if err := row.Scan(&app.ID, &app.CreatedAt); err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// FindByID returns one application.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	const query = `SELECT id, personal_info, research_preferences, commitments, essay, metadata, created_at FROM applications WHERE id = $1`

	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// Ping checks the database connection.
func (r *ApplicationRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

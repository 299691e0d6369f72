// FilePath: internal/repository/postgres/submissions.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/verdantlabs/chainsense/internal/database"
	"github.com/verdantlabs/chainsense/internal/errors"
	"github.com/verdantlabs/chainsense/internal/models"
)

const submissionsSchema = `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		digest TEXT NOT NULL UNIQUE,
		device_id TEXT NOT NULL,
		sensor_type TEXT NOT NULL,
		temperature BIGINT NOT NULL,
		humidity BIGINT NOT NULL,
		ec BIGINT NOT NULL,
		ph BIGINT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

type SubmissionRepo struct {
	db database.DB
}

// NewSubmissionRepository creates the archive repository and ensures its
// table exists
func NewSubmissionRepository(db database.DB) (*SubmissionRepo, error) {
	if _, err := db.GetDB().Exec(submissionsSchema); err != nil {
		return nil, errors.NewInternalError("failed to ensure submissions table", err)
	}
	return &SubmissionRepo{db: db}, nil
}

func (r *SubmissionRepo) Insert(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = nuts.NID("sub", 12)
	}
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO submissions (
			id, digest, device_id, sensor_type,
			temperature, humidity, ec, ph,
			location, status, created_at
		) VALUES (
			:id, :digest, :device_id, :sensor_type,
			:temperature, :humidity, :ec, :ph,
			:location, :status, :created_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, submission)
	if err != nil {
		return errors.NewInternalError("failed to archive submission", err)
	}
	return nil
}

func (r *SubmissionRepo) List(ctx context.Context, limit int) ([]*models.Submission, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	submissions := []*models.Submission{}
	query := `SELECT * FROM submissions ORDER BY created_at DESC LIMIT $1`

	err := r.db.GetDB().SelectContext(ctx, &submissions, query, limit)
	if err != nil {
		return nil, errors.NewInternalError("failed to list submissions", err)
	}
	return submissions, nil
}

func (r *SubmissionRepo) GetByDigest(ctx context.Context, digest string) (*models.Submission, error) {
	submission := &models.Submission{}
	query := `SELECT * FROM submissions WHERE digest = $1`

	err := r.db.GetDB().GetContext(ctx, submission, query, digest)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("submission not found", err)
		}
		return nil, errors.NewInternalError("failed to get submission", err)
	}
	return submission, nil
}

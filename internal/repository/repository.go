// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"github.com/verdantlabs/chainsense/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
)

// SubmissionRepository archives confirmed ledger writes for dashboard
// queries. The ledger stays the source of truth; this is a local convenience
// copy, so a nil repository simply disables archiving.
type SubmissionRepository interface {
	Insert(ctx context.Context, submission *models.Submission) error
	List(ctx context.Context, limit int) ([]*models.Submission, error)
	GetByDigest(ctx context.Context, digest string) (*models.Submission, error)
}

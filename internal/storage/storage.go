// Package storage defines persistence for applicant submissions.
package storage

import (
	"context"

	"github.com/carelane/medcheck/internal/models"
)

// Storage persists applicant records. Writes are insert-only: there is no
// update path and resubmissions create new rows.
type Storage interface {
	// CreateApplication inserts one applicant row and fills in its ID and
	// CreatedAt.
	CreateApplication(ctx context.Context, info *models.ApplicantInfo) error
	// ListApplications returns applications ordered by creation time,
	// newest first.
	ListApplications(ctx context.Context, offset, limit int) ([]*models.ApplicantInfo, error)
	// CountApplications returns the total number of applicant rows.
	CountApplications(ctx context.Context) (int64, error)

	Close() error
}

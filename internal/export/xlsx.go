// Package export produces XLSX workbooks of persisted demo applications.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/carelane/medcheck/internal/storage"
)

// applicationsSheet is the name of the single sheet in the workbook.
const applicationsSheet = "Applications"

// Service reads applicant rows from storage and serializes them to XLSX.
type Service struct {
	store  storage.Storage
	logger *zap.Logger
}

// NewService returns an export Service. A nil logger disables logging.
func NewService(store storage.Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// ApplicationsXLSX returns a workbook (as bytes) of all stored
// applications, newest first.
func (s *Service) ApplicationsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	apps, err := s.store.ListApplications(ctx, 0, 10000)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	index, err := f.NewSheet(applicationsSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Submitted At", "Full Name", "Email", "Organization", "Phone"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(applicationsSheet, cell, h)
	}

	for row, a := range apps {
		values := []any{
			a.CreatedAt.Format(time.RFC3339),
			a.FullName,
			a.Email,
			a.Organization,
			a.Phone,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(applicationsSheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	s.logger.Info("applications exported",
		zap.Int("rows", len(apps)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return buf.Bytes(), nil
}

package registry

import (
	"context"
	"encoding/json"

	"github.com/DevangRnd/fota-backend/internal/fota"
	"github.com/DevangRnd/fota-backend/internal/models"
	"gorm.io/datatypes"
)

// SaveImportReport persists the outcome of an import for later review.
func (s *Store) SaveImportReport(ctx context.Context, fileName, vendorID string, status int, result fota.ImportResult) (*models.ImportReport, error) {
	accepted, err := json.Marshal(result.Accepted)
	if err != nil {
		return nil, err
	}
	rejected, err := json.Marshal(result.Rejected)
	if err != nil {
		return nil, err
	}
	notes, err := json.Marshal(result.Notes)
	if err != nil {
		return nil, err
	}

	report := &models.ImportReport{
		FileName:      fileName,
		Status:        status,
		AcceptedCount: len(result.Accepted),
		RejectedCount: len(result.Rejected),
		Accepted:      datatypes.JSON(accepted),
		Rejected:      datatypes.JSON(rejected),
		Notes:         datatypes.JSON(notes),
	}
	if vendorID != "" {
		report.VendorID = &vendorID
	}
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

// ListImportReports returns the most recent reports first.
func (s *Store) ListImportReports(ctx context.Context, limit int) ([]models.ImportReport, error) {
	if limit <= 0 {
		limit = 50
	}
	reports := []models.ImportReport{}
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&reports).Error
	return reports, err
}

// Package firmware stores uploaded firmware binaries and serves the latest one.
package firmware

import (
	"context"
	"errors"

	"github.com/DevangRnd/fota-backend/internal/fota"
	"github.com/DevangRnd/fota-backend/internal/models"
	"gorm.io/gorm"
)

// Summary is the listing view of a firmware; the payload is never included.
type Summary struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Service is the firmware store front.
//
// With keepHistory off an upload replaces every stored firmware, so exactly
// one binary exists after each successful upload.
type Service struct {
	db          *gorm.DB
	keepHistory bool
}

// NewService creates a firmware Service.
func NewService(db *gorm.DB, keepHistory bool) *Service {
	return &Service{db: db, keepHistory: keepHistory}
}

// Upload stores a new firmware binary.
func (s *Service) Upload(ctx context.Context, name string, payload []byte) (*models.Firmware, error) {
	if name == "" || len(payload) == 0 {
		return nil, &fota.ValidationError{Message: "Firmware file and name are required"}
	}

	fw := &models.Firmware{Name: name, Payload: payload}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !s.keepHistory {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Firmware{}).Error; err != nil {
				return err
			}
		}
		return tx.Create(fw).Error
	})
	if err != nil {
		return nil, &fota.StoreError{Op: "upload firmware", Err: err}
	}
	return fw, nil
}

// List returns id and name of every stored firmware, newest first.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	summaries := []Summary{}
	err := s.db.WithContext(ctx).Model(&models.Firmware{}).
		Select("id", "name").
		Order("created_at DESC").
		Scan(&summaries).Error
	return summaries, err
}

// Latest returns the most recently uploaded firmware including its payload.
func (s *Service) Latest(ctx context.Context) (*models.Firmware, error) {
	var fw models.Firmware
	if err := s.db.WithContext(ctx).Order("created_at DESC").First(&fw).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &fota.NotFoundError{Entity: "firmware"}
		}
		return nil, err
	}
	return &fw, nil
}

// Package registry is the gorm-backed device, vendor and project registry.
package registry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DevangRnd/fota-backend/internal/fota"
	"github.com/DevangRnd/fota-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements fota.Store on top of gorm.
type Store struct {
	db *gorm.DB
}

var _ fota.Store = (*Store)(nil)

// New creates a Store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// isDuplicate reports a unique constraint violation. gorm translates it when
// TranslateError is on; the string checks cover drivers that do not.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

// DeviceExists reports whether a device with deviceID is registered.
func (s *Store) DeviceExists(ctx context.Context, deviceID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Device{}).Where("device_id = ?", deviceID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateDevice inserts a new device. The primary key on device_id rejects duplicates.
func (s *Store) CreateDevice(ctx context.Context, device *models.Device) error {
	if err := s.db.WithContext(ctx).Create(device).Error; err != nil {
		if isDuplicate(err) {
			return &fota.ConflictError{Entity: "device", ID: device.DeviceID}
		}
		return err
	}
	return nil
}

// GetDevice loads a device by id.
func (s *Store) GetDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	var device models.Device
	if err := s.db.WithContext(ctx).First(&device, "device_id = ?", deviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &fota.NotFoundError{Entity: "device", ID: deviceID}
		}
		return nil, err
	}
	return &device, nil
}

// MarkDevicesPending flags the listed devices for update in one statement.
func (s *Store) MarkDevicesPending(ctx context.Context, deviceIDs []string, firmwareName string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Device{}).
		Where("device_id IN ?", deviceIDs).
		Updates(map[string]interface{}{
			"pending_update":       true,
			"target_firmware_name": firmwareName,
		})
	return res.RowsAffected, res.Error
}

// TouchDevice records a heartbeat.
func (s *Store) TouchDevice(ctx context.Context, deviceID string, seen time.Time, signalStrength *int) error {
	updates := map[string]interface{}{"last_updated": seen}
	if signalStrength != nil {
		updates["signal_strength"] = *signalStrength
	}
	res := s.db.WithContext(ctx).Model(&models.Device{}).Where("device_id = ?", deviceID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &fota.NotFoundError{Entity: "device", ID: deviceID}
	}
	return nil
}

// CompleteUpdate promotes the target firmware in a single conditional UPDATE.
// Every right-hand side reads the pre-update row.
func (s *Store) CompleteUpdate(ctx context.Context, deviceID string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Device{}).
		Where("device_id = ? AND pending_update = ?", deviceID, true).
		Updates(map[string]interface{}{
			"current_firmware":     gorm.Expr("target_firmware_name"),
			"pending_update":       false,
			"target_firmware_name": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FirmwareExists reports whether any firmware carries name.
func (s *Store) FirmwareExists(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Firmware{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FirmwareByName returns the newest firmware named name.
func (s *Store) FirmwareByName(ctx context.Context, name string) (*models.Firmware, error) {
	var fw models.Firmware
	if err := s.db.WithContext(ctx).Where("name = ?", name).Order("created_at DESC").First(&fw).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &fota.NotFoundError{Entity: "firmware", ID: name}
		}
		return nil, err
	}
	return &fw, nil
}

// AppendVendorDevices adds deviceIDs to the vendor's device list in one
// batch insert. Entries already present are left alone.
func (s *Store) AppendVendorDevices(ctx context.Context, vendorID string, deviceIDs []string) error {
	if len(deviceIDs) == 0 {
		return nil
	}
	links := make([]models.VendorDevice, 0, len(deviceIDs))
	for _, id := range deviceIDs {
		links = append(links, models.VendorDevice{VendorID: vendorID, DeviceID: id})
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

// ListDevices returns every device, oldest first.
func (s *Store) ListDevices(ctx context.Context) ([]models.Device, error) {
	devices := []models.Device{}
	err := s.db.WithContext(ctx).Order("created_at ASC, device_id ASC").Find(&devices).Error
	return devices, err
}

// DevicesByVendor returns the devices on a vendor's device list.
func (s *Store) DevicesByVendor(ctx context.Context, vendorID string) ([]models.Device, error) {
	devices := []models.Device{}
	err := s.db.WithContext(ctx).
		Joins("JOIN vendor_devices ON vendor_devices.device_id = devices.device_id").
		Where("vendor_devices.vendor_id = ?", vendorID).
		Order("devices.created_at ASC, devices.device_id ASC").
		Find(&devices).Error
	return devices, err
}

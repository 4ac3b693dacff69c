// Package fota holds the firmware-update coordination core: bulk device
// reconciliation, update dispatch and the per-device update state machine.
//
// Components receive a Store explicitly. The store serializes single-record
// mutations; nothing here spans records in a transaction.
package fota

import (
	"context"
	"time"

	"github.com/DevangRnd/fota-backend/internal/models"
)

// Store is the registry capability the core needs.
//
// Implementations must return *NotFoundError for absent records and
// *ConflictError when CreateDevice hits an existing device id.
type Store interface {
	DeviceExists(ctx context.Context, deviceID string) (bool, error)
	CreateDevice(ctx context.Context, device *models.Device) error
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)

	// MarkDevicesPending sets pendingUpdate and targetFirmwareName on every
	// listed device that exists and returns how many were touched.
	MarkDevicesPending(ctx context.Context, deviceIDs []string, firmwareName string) (int64, error)

	// TouchDevice records a heartbeat. signalStrength is only written when non-nil.
	TouchDevice(ctx context.Context, deviceID string, seen time.Time, signalStrength *int) error

	// CompleteUpdate promotes targetFirmwareName to currentFirmware on a pending
	// device in one conditional write. It reports false when the device was not pending.
	CompleteUpdate(ctx context.Context, deviceID string) (bool, error)

	FirmwareExists(ctx context.Context, name string) (bool, error)
	FirmwareByName(ctx context.Context, name string) (*models.Firmware, error)

	AppendVendorDevices(ctx context.Context, vendorID string, deviceIDs []string) error
}

package fota

import (
	"context"
	"time"

	"github.com/DevangRnd/fota-backend/internal/models"
)

// State is a device's position in the update lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

// StateOf reports the lifecycle state of d.
func StateOf(d *models.Device) State {
	if d.PendingUpdate {
		return StatePending
	}
	return StateIdle
}

// Completion is the result of MarkCompleted.
type Completion struct {
	Device    *models.Device
	Completed bool
	Firmware  string
}

// Message is the user-facing summary of the completion.
func (c Completion) Message() string {
	if c.Completed {
		return "Update completed successfully"
	}
	return "Nothing to complete: no pending update"
}

// UpdateStateMachine drives the idle -> pending -> idle lifecycle from the
// device side. The idle -> pending edge belongs to Dispatcher.
type UpdateStateMachine struct {
	store Store
	now   func() time.Time
}

// NewUpdateStateMachine creates an UpdateStateMachine over store.
func NewUpdateStateMachine(store Store) *UpdateStateMachine {
	return &UpdateStateMachine{store: store, now: time.Now}
}

// CheckForUpdate is the device heartbeat. It always refreshes lastUpdated,
// records signalStrength when given, and returns the refreshed device so the
// caller can read PendingUpdate.
func (m *UpdateStateMachine) CheckForUpdate(ctx context.Context, deviceID string, signalStrength *int) (*models.Device, error) {
	if deviceID == "" {
		return nil, &ValidationError{Message: "device id is required"}
	}
	if err := m.store.TouchDevice(ctx, deviceID, m.now(), signalStrength); err != nil {
		return nil, storeErr("touch device", err)
	}
	device, err := m.store.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, storeErr("get device", err)
	}
	return device, nil
}

// FetchUpdate is the binary-on-poll variant of CheckForUpdate. When the
// device is pending it also resolves the target firmware; otherwise the
// returned firmware is nil.
func (m *UpdateStateMachine) FetchUpdate(ctx context.Context, deviceID string, signalStrength *int) (*models.Device, *models.Firmware, error) {
	device, err := m.CheckForUpdate(ctx, deviceID, signalStrength)
	if err != nil {
		return nil, nil, err
	}
	if StateOf(device) != StatePending || device.TargetFirmwareName == nil {
		return device, nil, nil
	}
	fw, err := m.store.FirmwareByName(ctx, *device.TargetFirmwareName)
	if err != nil {
		return device, nil, storeErr("firmware lookup", err)
	}
	return device, fw, nil
}

// MarkCompleted confirms installation of the pending firmware. On an idle
// device it is a no-op and reports Completed=false rather than an error, so
// repeated completions are safe and only the first one after a pending state
// has effect.
func (m *UpdateStateMachine) MarkCompleted(ctx context.Context, deviceID string) (Completion, error) {
	device, err := m.store.GetDevice(ctx, deviceID)
	if err != nil {
		return Completion{}, storeErr("get device", err)
	}
	if StateOf(device) != StatePending {
		return Completion{Device: device}, nil
	}

	done, err := m.store.CompleteUpdate(ctx, deviceID)
	if err != nil {
		return Completion{}, storeErr("complete update", err)
	}
	if !done {
		// Another completion won the race.
		device, err = m.store.GetDevice(ctx, deviceID)
		if err != nil {
			return Completion{}, storeErr("get device", err)
		}
		return Completion{Device: device}, nil
	}

	device, err = m.store.GetDevice(ctx, deviceID)
	if err != nil {
		return Completion{}, storeErr("get device", err)
	}
	c := Completion{Device: device, Completed: true}
	if device.CurrentFirmware != nil {
		c.Firmware = *device.CurrentFirmware
	}
	return c, nil
}

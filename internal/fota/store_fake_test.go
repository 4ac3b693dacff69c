package fota

import (
	"context"
	"errors"
	"time"

	"github.com/DevangRnd/fota-backend/internal/models"
)

// fakeStore is an in-memory Store with failure injection.
type fakeStore struct {
	devices   map[string]*models.Device
	firmwares map[string]*models.Firmware
	vendors   map[string][]string

	createErr   func(id string) error // consulted before inserting
	appendErr   error
	completeErr error
	appendCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		devices:   map[string]*models.Device{},
		firmwares: map[string]*models.Firmware{},
		vendors:   map[string][]string{},
	}
}

func (s *fakeStore) DeviceExists(_ context.Context, id string) (bool, error) {
	_, ok := s.devices[id]
	return ok, nil
}

func (s *fakeStore) CreateDevice(_ context.Context, d *models.Device) error {
	if s.createErr != nil {
		if err := s.createErr(d.DeviceID); err != nil {
			return err
		}
	}
	if _, ok := s.devices[d.DeviceID]; ok {
		return &ConflictError{Entity: "device", ID: d.DeviceID}
	}
	cp := *d
	s.devices[d.DeviceID] = &cp
	return nil
}

func (s *fakeStore) GetDevice(_ context.Context, id string) (*models.Device, error) {
	d, ok := s.devices[id]
	if !ok {
		return nil, &NotFoundError{Entity: "device", ID: id}
	}
	cp := *d
	return &cp, nil
}

func (s *fakeStore) MarkDevicesPending(_ context.Context, ids []string, name string) (int64, error) {
	var n int64
	for _, id := range ids {
		if d, ok := s.devices[id]; ok {
			d.PendingUpdate = true
			fw := name
			d.TargetFirmwareName = &fw
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) TouchDevice(_ context.Context, id string, seen time.Time, signal *int) error {
	d, ok := s.devices[id]
	if !ok {
		return &NotFoundError{Entity: "device", ID: id}
	}
	d.LastUpdated = &seen
	if signal != nil {
		v := *signal
		d.SignalStrength = &v
	}
	return nil
}

func (s *fakeStore) CompleteUpdate(_ context.Context, id string) (bool, error) {
	if s.completeErr != nil {
		return false, s.completeErr
	}
	d, ok := s.devices[id]
	if !ok || !d.PendingUpdate {
		return false, nil
	}
	d.CurrentFirmware = d.TargetFirmwareName
	d.TargetFirmwareName = nil
	d.PendingUpdate = false
	return true, nil
}

func (s *fakeStore) FirmwareExists(_ context.Context, name string) (bool, error) {
	_, ok := s.firmwares[name]
	return ok, nil
}

func (s *fakeStore) FirmwareByName(_ context.Context, name string) (*models.Firmware, error) {
	fw, ok := s.firmwares[name]
	if !ok {
		return nil, &NotFoundError{Entity: "firmware", ID: name}
	}
	return fw, nil
}

func (s *fakeStore) AppendVendorDevices(_ context.Context, vendorID string, ids []string) error {
	s.appendCalls++
	if s.appendErr != nil {
		return s.appendErr
	}
	for _, id := range ids {
		dup := false
		for _, have := range s.vendors[vendorID] {
			if have == id {
				dup = true
			}
		}
		if !dup {
			s.vendors[vendorID] = append(s.vendors[vendorID], id)
		}
	}
	return nil
}

func (s *fakeStore) addFirmware(name string) {
	s.firmwares[name] = &models.Firmware{ID: "fw-" + name, Name: name, Payload: []byte("bin:" + name)}
}

var errBoom = errors.New("boom")

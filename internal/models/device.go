package models

import (
	"encoding/json"
	"time"
)

// Device is a field unit registered through a bulk import.
// Convention: Go PascalCase -> DB snake_case (GORM auto) -> JSON camelCase
type Device struct {
	DeviceID           string     `gorm:"primaryKey" json:"deviceId"`
	Vendor             string     `gorm:"index;not null" json:"vendor"`
	District           string     `gorm:"not null" json:"district"`
	Block              string     `gorm:"not null" json:"block"`
	Panchayat          string     `gorm:"not null" json:"panchayat"`
	PendingUpdate      bool       `gorm:"not null;default:false;index" json:"pendingUpdate"`
	TargetFirmwareName *string    `json:"targetFirmwareName"`
	CurrentFirmware    *string    `json:"currentFirmware"`
	SignalStrength     *int       `json:"signalStrength"`
	LastUpdated        *time.Time `json:"lastUpdated"`
	UploadedOn         time.Time  `json:"uploadedOn"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for Device
func (Device) TableName() string {
	return "devices"
}

// FirmwareStatus renders the update state for dashboards, e.g. "Pending (fw-2.bin)".
func (d Device) FirmwareStatus() string {
	switch {
	case d.PendingUpdate && d.TargetFirmwareName != nil:
		return "Pending (" + *d.TargetFirmwareName + ")"
	case d.CurrentFirmware != nil:
		return "Completed (" + *d.CurrentFirmware + ")"
	default:
		return "Null"
	}
}

// MarshalJSON adds the derived firmwareStatus field.
func (d Device) MarshalJSON() ([]byte, error) {
	type plain Device
	return json.Marshal(struct {
		plain
		FirmwareStatus string `json:"firmwareStatus"`
	}{plain(d), d.FirmwareStatus()})
}

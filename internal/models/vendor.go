package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vendor groups devices supplied by one manufacturer within a project.
type Vendor struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	Name      string    `gorm:"not null" json:"name"`
	ProjectID *string   `gorm:"size:36;index" json:"projectId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Vendor
func (Vendor) TableName() string {
	return "vendors"
}

// BeforeCreate assigns the record id
func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// VendorDevice is one entry of a vendor's device list.
// The composite key keeps a device listed at most once per vendor.
type VendorDevice struct {
	VendorID  string    `gorm:"primaryKey;size:36"`
	DeviceID  string    `gorm:"primaryKey"`
	CreatedAt time.Time
}

// TableName specifies the table name for VendorDevice
func (VendorDevice) TableName() string {
	return "vendor_devices"
}

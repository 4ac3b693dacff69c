package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImportReport records the outcome of one bulk device import
type ImportReport struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	FileName      string         `json:"fileName"`
	VendorID      *string        `gorm:"size:36;index" json:"vendorId,omitempty"`
	Status        int            `gorm:"not null" json:"status"` // HTTP-equivalent status: 201, 207, 422
	AcceptedCount int            `gorm:"default:0" json:"acceptedCount"`
	RejectedCount int            `gorm:"default:0" json:"rejectedCount"`
	Accepted      datatypes.JSON `json:"accepted"`
	Rejected      datatypes.JSON `json:"rejected"`
	Notes         datatypes.JSON `json:"notes"`
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`
}

// TableName specifies the table name
func (ImportReport) TableName() string {
	return "import_reports"
}

// BeforeCreate assigns the record id
func (r *ImportReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Firmware is an uploaded binary. Name is the lookup key used by update dispatch.
type Firmware struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	Name      string    `gorm:"not null;index" json:"name"`
	Payload   []byte    `gorm:"not null" json:"-"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// TableName specifies the table name for Firmware
func (Firmware) TableName() string {
	return "firmwares"
}

// BeforeCreate assigns the record id
func (f *Firmware) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.Size = int64(len(f.Payload))
	return nil
}

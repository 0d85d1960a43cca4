package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records one board change. BoardID is not a foreign key so entries outlive the board.
type AuditLog struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	BoardID   string         `gorm:"type:uuid;index;not null" json:"board_id"`
	UserID    *string        `gorm:"type:uuid;index" json:"user_id"`
	Username  string         `json:"username"`
	Action    string         `gorm:"not null;index;type:varchar(64)" json:"action"`
	Result    string         `gorm:"not null;type:varchar(16)" json:"result"`
	Source    string         `gorm:"type:varchar(16)" json:"source"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Metadata  datatypes.JSON `json:"metadata"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns a UUID when none is set.
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

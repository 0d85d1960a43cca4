package models

import "gorm.io/datatypes"

// Item is a positioned widget inside a section.
type Item struct {
	LayoutModel

	SectionID       string         `gorm:"type:varchar(64);not null;index" json:"section_id"`
	Kind            string         `gorm:"type:varchar(64);not null" json:"kind"`
	Options         datatypes.JSON `json:"options"`
	AdvancedOptions datatypes.JSON `json:"advanced_options"`
	XOffset         int            `gorm:"not null" json:"x_offset"`
	YOffset         int            `gorm:"not null" json:"y_offset"`
	Width           int            `gorm:"not null" json:"width"`
	Height          int            `gorm:"not null" json:"height"`

	Integrations []ItemIntegration `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"integrations,omitempty"`
}

// ItemIntegration binds an item to an integration it reads from or controls.
type ItemIntegration struct {
	ItemID        string `gorm:"primaryKey;type:varchar(64)" json:"item_id"`
	IntegrationID string `gorm:"primaryKey;type:uuid;index" json:"integration_id"`
}

// TableName overrides the default table name for GORM.
func (ItemIntegration) TableName() string {
	return "item_integrations"
}

package models

// User is a principal that can own boards and hold grants directly or through groups.
type User struct {
	BaseModel

	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string `json:"display_name"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	Groups []Group `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE" json:"groups,omitempty"`
}

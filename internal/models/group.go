package models

// Group collects users so grants can be issued once for all current members.
// Groups do not nest.
type Group struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`

	Users       []User            `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE" json:"users,omitempty"`
	Permissions []GroupPermission `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

// GroupPermission assigns a global permission from the registry to every member of a group.
type GroupPermission struct {
	GroupID      string `gorm:"primaryKey;type:uuid" json:"group_id"`
	PermissionID string `gorm:"primaryKey;type:varchar(128)" json:"permission_id"`
}

// TableName overrides the default table name for GORM.
func (GroupPermission) TableName() string {
	return "group_permissions"
}

package models

// BoardPermission is a stored access tier. The modify tier is what access rules call "change".
type BoardPermission string

const (
	BoardPermissionView   BoardPermission = "view"
	BoardPermissionModify BoardPermission = "modify"
	BoardPermissionFull   BoardPermission = "full"
)

// Valid reports whether the permission is one of the known tiers.
func (p BoardPermission) Valid() bool {
	switch p {
	case BoardPermissionView, BoardPermissionModify, BoardPermissionFull:
		return true
	default:
		return false
	}
}

// BoardUserPermission grants a tier on a board to a single user.
type BoardUserPermission struct {
	BoardID    string          `gorm:"primaryKey;type:uuid" json:"board_id"`
	UserID     string          `gorm:"primaryKey;type:uuid;index" json:"user_id"`
	Permission BoardPermission `gorm:"primaryKey;type:varchar(16)" json:"permission"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the default table name for GORM.
func (BoardUserPermission) TableName() string {
	return "board_user_permissions"
}

// BoardGroupPermission grants a tier on a board to every member of a group.
type BoardGroupPermission struct {
	BoardID    string          `gorm:"primaryKey;type:uuid" json:"board_id"`
	GroupID    string          `gorm:"primaryKey;type:uuid;index" json:"group_id"`
	Permission BoardPermission `gorm:"primaryKey;type:varchar(16)" json:"permission"`

	Group *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the default table name for GORM.
func (BoardGroupPermission) TableName() string {
	return "board_group_permissions"
}

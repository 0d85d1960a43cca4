package models

// Board is a dashboard document. Its layout is the ordered set of sections it owns.
type Board struct {
	BaseModel

	Name      string  `gorm:"uniqueIndex;not null;type:varchar(255)" json:"name"`
	IsPublic  bool    `gorm:"default:false" json:"is_public"`
	CreatorID *string `gorm:"type:uuid;index" json:"creator_id"`
	Creator   *User   `gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL" json:"-"`

	PageTitle    string `json:"page_title"`
	MetaTitle    string `json:"meta_title"`
	LogoImageURL string `json:"logo_image_url"`
	PrimaryColor string `gorm:"type:varchar(16)" json:"primary_color"`
	ColumnCount  int    `gorm:"default:10" json:"column_count"`

	Sections         []Section              `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
	UserPermissions  []BoardUserPermission  `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
	GroupPermissions []BoardGroupPermission `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
}

package models

// Section is a grouping region of a board. Only the columns that belong to its kind are
// populated; the others are stored as NULL.
type Section struct {
	LayoutModel

	BoardID  string `gorm:"type:uuid;not null;index" json:"board_id"`
	Kind     string `gorm:"type:varchar(16);not null" json:"kind"`
	Position int    `gorm:"not null" json:"position"`

	// category
	Name *string `gorm:"type:varchar(255)" json:"name"`

	// dynamic
	XOffset         *int    `json:"x_offset"`
	YOffset         *int    `json:"y_offset"`
	Width           *int    `json:"width"`
	Height          *int    `json:"height"`
	ParentSectionID *string `gorm:"type:varchar(64);index" json:"parent_section_id"`

	Items          []Item                 `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Children       []Section              `gorm:"foreignKey:ParentSectionID;constraint:OnDelete:CASCADE" json:"-"`
	CollapseStates []SectionCollapseState `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"-"`
}

// SectionCollapseState remembers whether a user collapsed a section.
type SectionCollapseState struct {
	SectionID string `gorm:"primaryKey;type:varchar(64)" json:"section_id"`
	UserID    string `gorm:"primaryKey;type:uuid;index" json:"user_id"`
	Collapsed bool   `json:"collapsed"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the default table name for GORM.
func (SectionCollapseState) TableName() string {
	return "section_collapse_states"
}

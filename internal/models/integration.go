package models

// Integration is a connection to an external system that items can bind to.
type Integration struct {
	BaseModel

	Name string `gorm:"not null" json:"name"`
	Kind string `gorm:"type:varchar(64);not null;index" json:"kind"`
	URL  string `json:"url"`

	Items  []ItemIntegration  `gorm:"foreignKey:IntegrationID;constraint:OnDelete:CASCADE" json:"-"`
	Grants []IntegrationGrant `gorm:"foreignKey:IntegrationID;constraint:OnDelete:CASCADE" json:"-"`
}

// IntegrationGrant stores per-integration grants for a user or group.
type IntegrationGrant struct {
	BaseModel

	IntegrationID string `gorm:"type:uuid;not null;index:idx_integration_principal,priority:1" json:"integration_id"`
	PrincipalType string `gorm:"type:varchar(16);not null;index:idx_integration_principal,priority:2" json:"principal_type"`
	PrincipalID   string `gorm:"type:uuid;not null;index:idx_integration_principal,priority:3" json:"principal_id"`
	Permission    string `gorm:"type:varchar(16);not null" json:"permission"`
}

// TableName overrides the default table name for GORM.
func (IntegrationGrant) TableName() string {
	return "integration_grants"
}

const (
	PrincipalTypeUser  = "user"
	PrincipalTypeGroup = "group"
)

package database

import (
	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/models"
)

// AdminGroupName is the group seeded with the admin permission on first start.
const AdminGroupName = "admins"

// AutoMigrate creates or updates the database schema for all models.
// Parents are listed before the tables that reference them.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupPermission{},
		&models.Board{},
		&models.BoardUserPermission{},
		&models.BoardGroupPermission{},
		&models.Integration{},
		&models.IntegrationGrant{},
		&models.Section{},
		&models.SectionCollapseState{},
		&models.Item{},
		&models.ItemIntegration{},
		&models.AuditLog{},
	)
}

// SeedData creates the admin group holding the admin permission.
func SeedData(db *gorm.DB) error {
	group := models.Group{
		Name:        AdminGroupName,
		Description: "Members have every global permission",
	}
	if err := db.Where(models.Group{Name: group.Name}).Attrs(group).FirstOrCreate(&group).Error; err != nil {
		return err
	}

	grant := models.GroupPermission{GroupID: group.ID, PermissionID: "admin"}
	return db.Where(grant).FirstOrCreate(&models.GroupPermission{}).Error
}

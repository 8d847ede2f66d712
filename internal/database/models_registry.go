package database

import "github.com/mrJackie7/coderdev-hub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Parents precede children so foreign keys resolve.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Experience{},
		&models.Education{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
	}
}

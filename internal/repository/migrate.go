package repository

import (
	"go-inventory-api/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the users, products and inventory_history tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.Product{}, &model.AuditEntry{})
}

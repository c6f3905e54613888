package repository

import (
	"context"

	"go-inventory-api/internal/model"

	"gorm.io/gorm"
)

// AuditRepository is the append-only stock history. Entries are only ever
// inserted or removed together with their product.
type AuditRepository interface {
	WithTx(tx *gorm.DB) AuditRepository
	Append(ctx context.Context, entry *model.AuditEntry) error
	FindByProduct(ctx context.Context, productID uint) ([]model.AuditEntry, error)
	Recent(ctx context.Context, limit int) ([]model.AuditEntry, error)
	DeleteByProduct(ctx context.Context, productID uint) error
	Count(ctx context.Context) (int64, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

func (r *auditRepo) WithTx(tx *gorm.DB) AuditRepository {
	return &auditRepo{tx}
}

func (r *auditRepo) Append(ctx context.Context, entry *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByProduct returns the product's entries, newest first.
func (r *auditRepo) FindByProduct(ctx context.Context, productID uint) ([]model.AuditEntry, error) {
	entries := []model.AuditEntry{}
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("change_date DESC").
		Order("id DESC").
		Find(&entries).Error
	return entries, err
}

// Recent returns at most limit entries across all products, newest first.
func (r *auditRepo) Recent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	entries := []model.AuditEntry{}
	err := r.db.WithContext(ctx).
		Order("change_date DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *auditRepo) DeleteByProduct(ctx context.Context, productID uint) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.AuditEntry{}).Error
}

func (r *auditRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AuditEntry{}).Count(&count).Error
	return count, err
}

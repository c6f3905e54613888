package repository

import (
	"context"
	"fmt"
	"strings"

	"go-inventory-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// CategoryAll is the listing sentinel meaning "no category filter".
	CategoryAll = "All"

	DefaultPageLimit = 10
)

var allowedSortFields = map[string]bool{
	"name":     true,
	"stock":    true,
	"category": true,
	"brand":    true,
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error)
	NameTaken(ctx context.Context, name string, excludeID uint) (bool, error)
	Update(ctx context.Context, id uint, columns map[string]interface{}) error
	Delete(ctx context.Context, id uint) (int64, error)
	List(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error)
	Categories(ctx context.Context) ([]string, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// WithTx binds the repository to a running transaction.
func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate row-locks the product on dialects that support it.
// SQLite ignores the locking clause; callers serialize writers themselves.
func (r *productRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// NameTaken reports whether another product (id != excludeID) already uses name.
// Pass excludeID 0 to check against every product.
func (r *productRepo) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepo) Update(ctx context.Context, id uint, columns map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(columns).Error
}

func (r *productRepo) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *productRepo) List(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 1
	}

	sortField := filter.Sort
	if !allowedSortFields[sortField] {
		sortField = "name"
	}
	sortOrder := "ASC"
	if strings.EqualFold(filter.Order, "desc") {
		sortOrder = "DESC"
	}

	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Product{})
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Category != "" && filter.Category != CategoryAll {
			q = q.Where("category = ?", filter.Category)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	products := []model.Product{}
	err := filtered().Order(fmt.Sprintf("%s %s", sortField, sortOrder)).
		Order("id ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}

	return &model.ProductPage{
		Data: products,
		Pagination: model.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (r *productRepo) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Distinct("category").
		Where("category IS NOT NULL AND category <> ''").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-inventory-api/internal/csvio"
	"go-inventory-api/internal/events"
	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InventoryService interface {
	CreateProduct(ctx context.Context, req *model.CreateProductRequest, actor *model.Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, req *model.UpdateProductRequest, actor *model.Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint, actor *model.Actor) error
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	ListProducts(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error)
	Categories(ctx context.Context) ([]string, error)
	History(ctx context.Context, id uint) ([]model.AuditEntry, error)
	ImportProducts(ctx context.Context, r io.Reader, actor *model.Actor) (*ImportResult, error)
	ImportUpload(ctx context.Context, upload io.Reader, actor *model.Actor) (*ImportResult, error)
	ExportProducts(ctx context.Context, w io.Writer) error
}

// ImportResult summarises a CSV import.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

type inventoryService struct {
	productRepo repository.ProductRepository
	auditRepo   repository.AuditRepository
	db          *gorm.DB
	notifier    events.Notifier
	log         *zap.Logger
	uploadDir   string
	locks       *keyedMutex
	now         func() time.Time
}

func NewInventoryService(pRepo repository.ProductRepository, aRepo repository.AuditRepository, db *gorm.DB, notifier events.Notifier, log *zap.Logger, uploadDir string) InventoryService {
	if notifier == nil {
		notifier = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &inventoryService{
		productRepo: pRepo,
		auditRepo:   aRepo,
		db:          db,
		notifier:    notifier,
		log:         log,
		uploadDir:   uploadDir,
		locks:       newKeyedMutex(),
		now:         time.Now,
	}
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *model.CreateProductRequest, actor *model.Actor) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:     req.Name,
		Unit:     req.Unit,
		Category: req.Category,
		Brand:    req.Brand,
		Stock:    int(req.Stock),
		Status:   req.Status,
		Image:    req.Image,
	}
	user := model.ActorName(actor)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		taken, err := products.NameTaken(ctx, product.Name, 0)
		if err != nil {
			return fmt.Errorf("check product name: %w", err)
		}
		if taken {
			return ErrDuplicateName
		}

		if err := products.Create(ctx, product); err != nil {
			return translateWriteError(err, "create product")
		}

		// Every product is born with a history entry, even 0 -> 0.
		return s.appendEntry(ctx, tx, product.ID, 0, product.Stock, user)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Int("stock", product.Stock),
		zap.String("user", user))

	newStock := product.Stock
	s.publish(ctx, events.StockEvent{
		Action:    events.ActionProductCreated,
		ProductID: product.ID,
		Name:      product.Name,
		NewStock:  &newStock,
		User:      user,
		Message:   fmt.Sprintf("%s created product '%s'", user, product.Name),
	})

	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uint, req *model.UpdateProductRequest, actor *model.Actor) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	user := model.ActorName(actor)
	var (
		updated      *model.Product
		oldStock     int
		stockChanged bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		existing, err := products.FindByIDForUpdate(ctx, id)
		if err != nil {
			return translateReadError(err, "load product")
		}
		oldStock = existing.Stock

		if req.IsEmpty() {
			updated = existing
			return nil
		}

		if req.Name != nil {
			taken, err := products.NameTaken(ctx, *req.Name, id)
			if err != nil {
				return fmt.Errorf("check product name: %w", err)
			}
			if taken {
				return ErrDuplicateName
			}
		}

		if err := products.Update(ctx, id, req.Columns()); err != nil {
			return translateWriteError(err, "update product")
		}

		if req.Stock != nil && int(*req.Stock) != oldStock {
			stockChanged = true
			if err := s.appendEntry(ctx, tx, id, oldStock, int(*req.Stock), user); err != nil {
				return err
			}
		}

		updated, err = products.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("reload product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.IsEmpty() {
		return updated, nil
	}

	s.log.Info("product updated",
		zap.Uint("product_id", id),
		zap.Bool("stock_changed", stockChanged),
		zap.Int("old_stock", oldStock),
		zap.Int("new_stock", updated.Stock),
		zap.String("user", user))

	newStock := updated.Stock
	s.publish(ctx, events.StockEvent{
		Action:    events.ActionProductUpdated,
		ProductID: id,
		Name:      updated.Name,
		OldStock:  &oldStock,
		NewStock:  &newStock,
		User:      user,
		Message:   fmt.Sprintf("%s updated product '%s'", user, updated.Name),
	})

	return updated, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id uint, actor *model.Actor) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	user := model.ActorName(actor)
	var deleted *model.Product

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		existing, err := products.FindByIDForUpdate(ctx, id)
		if err != nil {
			return translateReadError(err, "load product")
		}

		if err := s.auditRepo.WithTx(tx).DeleteByProduct(ctx, id); err != nil {
			return fmt.Errorf("delete product history: %w", err)
		}

		rows, err := products.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		if rows == 0 {
			return ErrProductNotFound
		}

		deleted = existing
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("product deleted", zap.Uint("product_id", id), zap.String("user", user))

	s.publish(ctx, events.StockEvent{
		Action:    events.ActionProductDeleted,
		ProductID: id,
		Name:      deleted.Name,
		User:      user,
		Message:   fmt.Sprintf("%s deleted product '%s'", user, deleted.Name),
	})
	return nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translateReadError(err, "load product")
	}
	return product, nil
}

func (s *inventoryService) ListProducts(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	page, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return page, nil
}

func (s *inventoryService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// History returns the product's stock transitions, newest first.
func (s *inventoryService) History(ctx context.Context, id uint) ([]model.AuditEntry, error) {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, translateReadError(err, "load product")
	}
	entries, err := s.auditRepo.FindByProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product history: %w", err)
	}
	return entries, nil
}

// ImportProducts inserts every row whose trimmed name is non-empty and not yet
// used, in file order, inside one transaction. Imported rows get no history
// entry. A store failure rolls back the whole batch.
func (s *inventoryService) ImportProducts(ctx context.Context, r io.Reader, actor *model.Actor) (*ImportResult, error) {
	rows, err := csvio.ReadRows(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	user := model.ActorName(actor)
	var result ImportResult

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result = ImportResult{}
		products := s.productRepo.WithTx(tx)

		for _, row := range rows {
			name := strings.TrimSpace(row.Get("name"))
			if name == "" {
				result.Skipped++
				continue
			}

			taken, err := products.NameTaken(ctx, name, 0)
			if err != nil {
				return fmt.Errorf("check product name: %w", err)
			}
			if taken {
				result.Skipped++
				continue
			}

			product := &model.Product{
				Name:     name,
				Unit:     row.Get("unit"),
				Category: row.Get("category"),
				Brand:    row.Get("brand"),
				Stock:    model.ParseQuantity(row.Get("stock")),
				Status:   row.Get("status"),
				Image:    row.Get("image"),
			}

			// Savepoint per row so a lost uniqueness race only skips the row.
			err = tx.Transaction(func(rowTx *gorm.DB) error {
				return s.productRepo.WithTx(rowTx).Create(ctx, product)
			})
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				result.Skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("import product %q: %w", name, err)
			}
			result.Added++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("products imported",
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped),
		zap.String("user", user))

	s.publish(ctx, events.StockEvent{
		Action:  events.ActionProductsImported,
		Added:   result.Added,
		Skipped: result.Skipped,
		User:    user,
		Message: fmt.Sprintf("%s imported %d products (%d skipped)", user, result.Added, result.Skipped),
	})

	return &result, nil
}

// ImportUpload stages the upload in the upload directory, imports it and
// removes the staged file whatever the outcome.
func (s *inventoryService) ImportUpload(ctx context.Context, upload io.Reader, actor *model.Actor) (*ImportResult, error) {
	if upload == nil {
		return nil, ErrMissingFile
	}

	path, err := s.stage(upload)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("remove staged upload", zap.String("path", path), zap.Error(err))
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open staged upload: %w", err)
	}
	defer f.Close()

	return s.ImportProducts(ctx, f, actor)
}

func (s *inventoryService) stage(upload io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(s.uploadDir, uuid.NewString()+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if _, err := io.Copy(f, upload); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return path, nil
}

func (s *inventoryService) ExportProducts(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	return csvio.WriteProducts(w, products)
}

func (s *inventoryService) appendEntry(ctx context.Context, tx *gorm.DB, productID uint, oldQty, newQty int, user string) error {
	entry := &model.AuditEntry{
		ProductID:   productID,
		OldQuantity: oldQty,
		NewQuantity: newQty,
		ChangeDate:  s.now().UTC(),
		UserInfo:    user,
	}
	if err := s.auditRepo.WithTx(tx).Append(ctx, entry); err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

func (s *inventoryService) publish(ctx context.Context, event events.StockEvent) {
	event.ID = uuid.NewString()
	event.Type = events.TypeStockUpdate
	event.At = s.now().UTC()
	s.notifier.Publish(ctx, event)
}

func translateReadError(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func translateWriteError(err error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateName
	}
	return fmt.Errorf("%s: %w", op, err)
}

package model

// Product is a stocked item. Name is unique across the table.
type Product struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Unit     string `gorm:"type:varchar(50)" json:"unit"`
	Category string `gorm:"type:varchar(100);index" json:"category"`
	Brand    string `gorm:"type:varchar(100)" json:"brand"`
	Stock    int    `gorm:"not null;default:0" json:"stock"`
	Status   string `gorm:"type:varchar(50)" json:"status"`
	Image    string `gorm:"type:text" json:"image"`

	// Relasi
	History []AuditEntry `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	Name     string   `json:"name" validate:"notblank"`
	Unit     string   `json:"unit"`
	Category string   `json:"category"`
	Brand    string   `json:"brand"`
	Stock    Quantity `json:"stock" validate:"min=0"`
	Status   string   `json:"status"`
	Image    string   `json:"image"`
}

// UpdateProductRequest is a partial update. A nil field was omitted by the
// caller; a pointer to the zero value clears the column.
type UpdateProductRequest struct {
	Name     *string   `json:"name" validate:"omitempty,notblank"`
	Unit     *string   `json:"unit"`
	Category *string   `json:"category"`
	Brand    *string   `json:"brand"`
	Stock    *Quantity `json:"stock" validate:"omitempty,min=0"`
	Status   *string   `json:"status"`
	Image    *string   `json:"image"`
}

// IsEmpty reports whether no field is present.
func (r *UpdateProductRequest) IsEmpty() bool {
	return r.Name == nil && r.Unit == nil && r.Category == nil && r.Brand == nil &&
		r.Stock == nil && r.Status == nil && r.Image == nil
}

// Columns returns the column/value pairs for the present fields.
func (r *UpdateProductRequest) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if r.Name != nil {
		cols["name"] = *r.Name
	}
	if r.Unit != nil {
		cols["unit"] = *r.Unit
	}
	if r.Category != nil {
		cols["category"] = *r.Category
	}
	if r.Brand != nil {
		cols["brand"] = *r.Brand
	}
	if r.Stock != nil {
		cols["stock"] = int(*r.Stock)
	}
	if r.Status != nil {
		cols["status"] = *r.Status
	}
	if r.Image != nil {
		cols["image"] = *r.Image
	}
	return cols
}

// ProductFilter drives the paginated product listing.
type ProductFilter struct {
	Search   string
	Category string
	Sort     string
	Order    string
	Page     int
	Limit    int
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ProductPage struct {
	Data       []Product  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

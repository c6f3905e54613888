package model

import "time"

// SystemActor attributes changes made without an authenticated user.
const SystemActor = "system"

// AuditEntry records one stock transition of a product. Entries are never
// updated; they disappear only with their product.
type AuditEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	OldQuantity int       `gorm:"not null" json:"old_quantity"`
	NewQuantity int       `gorm:"not null" json:"new_quantity"`
	ChangeDate  time.Time `gorm:"not null;index" json:"change_date"`
	UserInfo    string    `gorm:"type:varchar(255)" json:"user_info"`
}

func (AuditEntry) TableName() string {
	return "inventory_history"
}

// Delta is the signed stock change carried by the entry.
func (e AuditEntry) Delta() int {
	return e.NewQuantity - e.OldQuantity
}

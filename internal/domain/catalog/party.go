package catalog

import (
	"github.com/farmadist/backend/internal/domain/shared"
)

// Supplier provides products through supply orders
type Supplier struct {
	shared.BaseEntity
	Name    string `gorm:"type:varchar(200);not null"`
	Contact string `gorm:"type:varchar(100)"`
	Address string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a supplier
func NewSupplier(name, contact string) *Supplier {
	return &Supplier{BaseEntity: shared.NewBaseEntity(), Name: name, Contact: contact}
}

// Client buys products through sales
type Client struct {
	shared.BaseEntity
	Name     string `gorm:"type:varchar(200);not null"`
	Document string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Address  string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a client identified by a tax or identity document
func NewClient(name, document string) *Client {
	return &Client{BaseEntity: shared.NewBaseEntity(), Name: name, Document: document}
}

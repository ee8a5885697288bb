// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid      InvoiceStatus = "Unpaid"
	InvoiceStatusPaid        InvoiceStatus = "Paid"
	InvoiceStatusCancelled   InvoiceStatus = "Cancelled"
	InvoiceStatusRefunded    InvoiceStatus = "Refunded"
	InvoiceStatusCollections InvoiceStatus = "Collections"
)

// Invoice represents a customer invoice. Subtotal, Tax, Tax2 and Total are
// always written together; partial totals updates are never valid.
type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	CustomerID    snowflake.ID    `gorm:"not null;index"`
	Status        InvoiceStatus   `gorm:"type:text;not null;default:'Unpaid';index"`
	PaymentMethod string          `gorm:"type:text;not null;default:''"`
	TaxRate       decimal.Decimal `gorm:"type:numeric(6,3);not null;default:0"`
	TaxRate2      decimal.Decimal `gorm:"type:numeric(6,3);not null;default:0"`
	Credit        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Tax           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Tax2          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Date          time.Time       `gorm:"not null"`
	DueDate       time.Time       `gorm:"not null"`
	DateCancelled *time.Time      `gorm:""`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is a line on an invoice. RelID points at the service or
// addon the line bills for; it may match nothing, which is exactly the
// "unrelated" case during a split. InvoiceID is mutable: moving an item to
// another invoice is a supported operation.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey"`
	InvoiceID   snowflake.ID    `gorm:"not null;index"`
	RelID       snowflake.ID    `gorm:"index"`
	Description string          `gorm:"type:text;not null;default:''"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// Totals is the recomputed money summary of one invoice.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Tax2     decimal.Decimal
	Total    decimal.Decimal
}

// Package domain contains the payment-gateway contracts used when a
// recurring subscription must be cancelled.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ProviderConfig is one configured payment gateway, keyed by the payment
// method name stored on services and addons.
type ProviderConfig struct {
	ID                   int64             `gorm:"primaryKey"`
	Provider             string            `gorm:"type:text;not null;uniqueIndex"`
	DisplayName          string            `gorm:"type:text;not null;default:''"`
	Endpoint             string            `gorm:"type:text;not null;default:''"`
	SupportsCancellation bool              `gorm:"not null;default:false"`
	IsActive             bool              `gorm:"not null;default:true"`
	Config               datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt            time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ProviderConfig) TableName() string { return "payment_gateway_configs" }

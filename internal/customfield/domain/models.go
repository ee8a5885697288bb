// Package domain contains persistence models for product custom fields.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// FieldTypeProduct marks custom fields attached to hosted services.
const FieldTypeProduct = "product"

// CustomField is a named, typed field definition.
type CustomField struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:text;not null;index:ux_custom_fields_name_type,unique"`
	Type      string       `gorm:"type:text;not null;index:ux_custom_fields_name_type,unique"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CustomField) TableName() string { return "custom_fields" }

// CustomFieldValue stores a field's value for one related entity.
type CustomFieldValue struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	FieldID   snowflake.ID `gorm:"not null;index:ux_custom_field_values_field_rel,unique"`
	RelID     snowflake.ID `gorm:"not null;index:ux_custom_field_values_field_rel,unique"`
	Value     string       `gorm:"type:text;not null;default:''"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CustomFieldValue) TableName() string { return "custom_field_values" }

// TicketResolver resolves the support-ticket reference for a service
// cancellation. The stored custom-field value wins over the inline value
// supplied with the trigger; the inline value is escaped before use.
type TicketResolver interface {
	TicketRef(ctx context.Context, serviceID snowflake.ID, inline string) string
}

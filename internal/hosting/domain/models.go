// Package domain contains persistence models for hosted services and
// their addons.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ServiceStatus represents hosted-service lifecycle states.
type ServiceStatus string

const (
	ServiceStatusPending    ServiceStatus = "Pending"
	ServiceStatusActive     ServiceStatus = "Active"
	ServiceStatusSuspended  ServiceStatus = "Suspended"
	ServiceStatusCancelled  ServiceStatus = "Cancelled"
	ServiceStatusTerminated ServiceStatus = "Terminated"
)

// Service is a billable hosted product instance owned by a customer.
type Service struct {
	ID              snowflake.ID  `gorm:"primaryKey"`
	CustomerID      snowflake.ID  `gorm:"not null;index"`
	Status          ServiceStatus `gorm:"type:text;not null;default:'Pending'"`
	PaymentMethod   string        `gorm:"type:text;not null;default:''"`
	SubscriptionRef *string       `gorm:"type:text"`
	Notes           string        `gorm:"type:text;not null;default:''"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Service) TableName() string { return "services" }

// Addon is a supplementary billable item attached to a service. It can be
// cancelled independently or cascaded from its parent.
type Addon struct {
	ID              snowflake.ID  `gorm:"primaryKey"`
	ServiceID       snowflake.ID  `gorm:"not null;index"`
	CustomerID      snowflake.ID  `gorm:"not null;index"`
	Status          ServiceStatus `gorm:"type:text;not null;default:'Pending'"`
	PaymentMethod   string        `gorm:"type:text;not null;default:''"`
	SubscriptionRef *string       `gorm:"type:text"`
	Notes           string        `gorm:"type:text;not null;default:''"`
	TerminationDate *time.Time    `gorm:""`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Addon) TableName() string { return "service_addons" }

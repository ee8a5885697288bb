// Package domain contains the cancellation-cascade contracts and the
// pending-note staging model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PendingNote stages the composed cancellation note between the
// status-change trigger and the post-commit edited trigger. Keyed by
// service id and short-lived: the edited trigger consumes and deletes it.
type PendingNote struct {
	ServiceID snowflake.ID `gorm:"primaryKey"`
	Note      string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PendingNote) TableName() string { return "pending_service_notes" }

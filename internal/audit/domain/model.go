// Package domain contains persistence models for the activity log.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActivityLog is one entry in the platform activity trail. Cancellation
// failures that never reach the caller are surfaced here.
type ActivityLog struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	Actor       string            `gorm:"type:text;not null;default:''"`
	Action      string            `gorm:"type:text;not null;index"`
	Message     string            `gorm:"type:text;not null"`
	SubjectType string            `gorm:"type:text;not null;default:''"`
	SubjectID   snowflake.ID      `gorm:"index"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// TableName sets the database table name.
func (ActivityLog) TableName() string { return "activity_logs" }

package repository

import (
	"context"
	"strings"

	auditdomain "github.com/smallbiznis/sunset/internal/audit/domain"
	"github.com/smallbiznis/sunset/pkg/db/option"
	"github.com/smallbiznis/sunset/pkg/db/pagination"
	"gorm.io/gorm"
)

type repository struct{}

// Provide builds the activity-log repository.
func Provide() auditdomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, entry *auditdomain.ActivityLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, db *gorm.DB, req auditdomain.ListActivityRequest, limit int) ([]*auditdomain.ActivityLog, error) {
	stmt := db.WithContext(ctx).Model(&auditdomain.ActivityLog{})

	if action := strings.TrimSpace(req.Action); action != "" {
		stmt = stmt.Where("action = ?", action)
	}
	if subjectType := strings.TrimSpace(req.SubjectType); subjectType != "" {
		stmt = stmt.Where("subject_type = ?", subjectType)
	}
	if subjectID := strings.TrimSpace(req.SubjectID); subjectID != "" {
		stmt = stmt.Where("subject_id = ?", subjectID)
	}
	if req.StartAt != nil {
		stmt = option.ApplyOperator(option.Condition{Field: "created_at", Operator: option.GTE, Value: *req.StartAt}).Apply(stmt)
	}
	if req.EndAt != nil {
		stmt = option.ApplyOperator(option.Condition{Field: "created_at", Operator: option.LTE, Value: *req.EndAt}).Apply(stmt)
	}

	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return nil, auditdomain.ErrInvalidPageToken
		}
		if cursor.ID != "" {
			stmt = stmt.Where("id < ?", cursor.ID)
		}
	}

	var entries []*auditdomain.ActivityLog
	err := stmt.Order("id DESC").Limit(limit + 1).Find(&entries).Error
	return entries, err
}

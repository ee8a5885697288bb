package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sunset/pkg/db/pagination"
)

type ListActivityRequest struct {
	pagination.Pagination
	Action      string
	SubjectType string
	SubjectID   string
	StartAt     *time.Time
	EndAt       *time.Time
}

type ListActivityResponse struct {
	pagination.PageInfo
	Entries []ActivityLog `json:"entries"`
}

// Service records and lists activity-log entries. Activity never fails the
// caller: a write error is logged and swallowed.
type Service interface {
	Activity(ctx context.Context, message string, subjectID snowflake.ID)
	Record(ctx context.Context, action, subjectType string, subjectID snowflake.ID, message string, metadata map[string]any)
	List(ctx context.Context, req ListActivityRequest) (ListActivityResponse, error)
}

var (
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)

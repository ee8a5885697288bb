package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sunset/internal/actorctx"
	auditdomain "github.com/smallbiznis/sunset/internal/audit/domain"
	"github.com/smallbiznis/sunset/internal/clock"
	"github.com/smallbiznis/sunset/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
	clock clock.Clock
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Activity(ctx context.Context, message string, subjectID snowflake.ID) {
	s.Record(ctx, "activity", "", subjectID, message, nil)
}

func (s *Service) Record(ctx context.Context, action, subjectType string, subjectID snowflake.ID, message string, metadata map[string]any) {
	action = strings.TrimSpace(action)
	if action == "" {
		action = "activity"
	}

	payload := map[string]any{}
	for key, value := range metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}

	entry := auditdomain.ActivityLog{
		ID:          s.genID.Generate(),
		Actor:       actorctx.ActorFromContext(ctx),
		Action:      action,
		Message:     strings.TrimSpace(message),
		SubjectType: strings.TrimSpace(subjectType),
		SubjectID:   subjectID,
		Metadata:    datatypes.JSONMap(payload),
		CreatedAt:   s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write activity log",
			zap.String("action", action),
			zap.String("subject_id", subjectID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, req auditdomain.ListActivityRequest) (auditdomain.ListActivityResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.EndAt.Before(*req.StartAt) {
		return auditdomain.ListActivityResponse{}, auditdomain.ErrInvalidTimeRange
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 50
	}

	entries, err := s.repo.List(ctx, s.db, req, limit)
	if err != nil {
		return auditdomain.ListActivityResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(entries, int32(limit), func(entry *auditdomain.ActivityLog) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: entry.ID.String()})
		return token
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}

	result := make([]auditdomain.ActivityLog, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		result = append(result, *entry)
	}

	return auditdomain.ListActivityResponse{PageInfo: *pageInfo, Entries: result}, nil
}

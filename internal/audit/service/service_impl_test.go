package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/sunset/internal/actorctx"
	auditdomain "github.com/smallbiznis/sunset/internal/audit/domain"
	auditrepo "github.com/smallbiznis/sunset/internal/audit/repository"
	"github.com/smallbiznis/sunset/internal/clock"
	"github.com/smallbiznis/sunset/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuditService(t *testing.T) (auditdomain.Service, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_audit_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.ActivityLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  auditrepo.Provide(),
		Clock: clk,
	})
	return svc, db, node, clk
}

func TestRecord_WritesEntryWithActor(t *testing.T) {
	svc, db, node, _ := setupAuditService(t)
	ctx := actorctx.WithActor(context.Background(), "jsmith")

	subjectID := node.Generate()
	svc.Record(ctx, "cancellation.cascade", "service", subjectID, "Service cancelled by jsmith on 2024-01-15", map[string]any{
		"cancelled_addons": 2,
	})

	var entry auditdomain.ActivityLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "jsmith", entry.Actor)
	assert.Equal(t, "cancellation.cascade", entry.Action)
	assert.Equal(t, "service", entry.SubjectType)
	assert.Equal(t, subjectID, entry.SubjectID)
	assert.Contains(t, entry.Message, "cancelled by jsmith")
}

func TestActivity_DefaultsActionAndActor(t *testing.T) {
	svc, db, node, _ := setupAuditService(t)

	svc.Activity(context.Background(), "Invoice cancelled", node.Generate())

	var entry auditdomain.ActivityLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, actorctx.DefaultActor, entry.Actor)
	assert.Equal(t, "activity", entry.Action)
}

func TestList_FiltersAndPaginates(t *testing.T) {
	svc, _, node, clk := setupAuditService(t)
	ctx := context.Background()

	subjectID := node.Generate()
	for i := 0; i < 5; i++ {
		svc.Record(ctx, "invoice.cancelled", "invoice", subjectID, "Invoice cancelled", nil)
		clk.Advance(time.Minute)
	}
	svc.Record(ctx, "cancellation.cascade", "service", node.Generate(), "Cascade done", nil)

	resp, err := svc.List(ctx, auditdomain.ListActivityRequest{Action: "invoice.cancelled"})
	require.NoError(t, err)
	assert.Len(t, resp.Entries, 5)
	assert.False(t, resp.HasMore)

	// Page through two at a time, newest first.
	page, err := svc.List(ctx, auditdomain.ListActivityRequest{
		Pagination: paginationWith(2, ""),
		Action:     "invoice.cancelled",
	})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.True(t, page.HasMore)
	assert.True(t, page.Entries[0].ID > page.Entries[1].ID)

	next, err := svc.List(ctx, auditdomain.ListActivityRequest{
		Pagination: paginationWith(2, page.NextPageToken),
		Action:     "invoice.cancelled",
	})
	require.NoError(t, err)
	require.Len(t, next.Entries, 2)
	assert.True(t, next.Entries[0].ID < page.Entries[1].ID)
}

func TestList_InvalidInput(t *testing.T) {
	svc, _, _, _ := setupAuditService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, auditdomain.ListActivityRequest{
		Pagination: paginationWith(10, "not-base64!!"),
	})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidPageToken)

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err = svc.List(ctx, auditdomain.ListActivityRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}

func paginationWith(size int, token string) pagination.Pagination {
	return pagination.Pagination{PageSize: size, PageToken: token}
}

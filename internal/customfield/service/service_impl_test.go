package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/sunset/internal/config"
	customfielddomain "github.com/smallbiznis/sunset/internal/customfield/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupResolverDB(t *testing.T) (*gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_customfield_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customfielddomain.CustomField{},
		&customfielddomain.CustomFieldValue{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return db, node
}

func newResolver(db *gorm.DB) customfielddomain.TicketResolver {
	return NewResolver(Params{
		DB:  db,
		Log: zap.NewNop(),
		Cfg: config.Config{TicketFieldName: "Cancellation Ticket ID"},
	})
}

func TestTicketRef_StoredValueWins(t *testing.T) {
	ctx := context.Background()
	db, node := setupResolverDB(t)

	field := customfielddomain.CustomField{
		ID:   node.Generate(),
		Name: "Cancellation Ticket ID",
		Type: customfielddomain.FieldTypeProduct,
	}
	require.NoError(t, db.Create(&field).Error)

	serviceID := node.Generate()
	require.NoError(t, db.Create(&customfielddomain.CustomFieldValue{
		ID:      node.Generate(),
		FieldID: field.ID,
		RelID:   serviceID,
		Value:   "  T-100  ",
	}).Error)

	resolver := newResolver(db)
	assert.Equal(t, "T-100", resolver.TicketRef(ctx, serviceID, "inline-ignored"))
}

func TestTicketRef_InlineFallbackIsEscaped(t *testing.T) {
	ctx := context.Background()
	db, node := setupResolverDB(t)

	field := customfielddomain.CustomField{
		ID:   node.Generate(),
		Name: "Cancellation Ticket ID",
		Type: customfielddomain.FieldTypeProduct,
	}
	require.NoError(t, db.Create(&field).Error)

	resolver := newResolver(db)

	serviceID := node.Generate()
	assert.Equal(t, "&lt;b&gt;T-1&lt;/b&gt;", resolver.TicketRef(ctx, serviceID, "<b>T-1</b>"))
	assert.Equal(t, "T-2", resolver.TicketRef(ctx, serviceID, "  T-2  "))
	assert.Equal(t, "", resolver.TicketRef(ctx, serviceID, "   "))
}

func TestTicketRef_MissingFieldDisablesLookup(t *testing.T) {
	ctx := context.Background()
	db, node := setupResolverDB(t)

	// No custom field configured: only the inline value can serve.
	resolver := newResolver(db)
	assert.Equal(t, "T-9", resolver.TicketRef(ctx, node.Generate(), "T-9"))
}

func TestTicketRef_EmptyStoredValueFallsBack(t *testing.T) {
	ctx := context.Background()
	db, node := setupResolverDB(t)

	field := customfielddomain.CustomField{
		ID:   node.Generate(),
		Name: "Cancellation Ticket ID",
		Type: customfielddomain.FieldTypeProduct,
	}
	require.NoError(t, db.Create(&field).Error)

	serviceID := node.Generate()
	require.NoError(t, db.Create(&customfielddomain.CustomFieldValue{
		ID:      node.Generate(),
		FieldID: field.ID,
		RelID:   serviceID,
		Value:   "   ",
	}).Error)

	resolver := newResolver(db)
	assert.Equal(t, "T-7", resolver.TicketRef(ctx, serviceID, "T-7"))
}

package service

import (
	"context"
	"html"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sunset/internal/config"
	customfielddomain "github.com/smallbiznis/sunset/internal/customfield/domain"
	"github.com/smallbiznis/sunset/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
	Cfg config.Config
}

// Resolver looks up the cancellation-ticket custom field. The field ID is
// resolved once by configured name and cached, so a renamed field surfaces
// as a startup warning instead of a silent per-event miss.
type Resolver struct {
	db  *gorm.DB
	log *zap.Logger
	cfg config.Config

	fields repository.Repository[customfielddomain.CustomField]
	values repository.Repository[customfielddomain.CustomFieldValue]

	once    sync.Once
	fieldID snowflake.ID
}

func NewResolver(p Params) customfielddomain.TicketResolver {
	return &Resolver{
		db:  p.DB,
		log: p.Log.Named("customfield.resolver"),
		cfg: p.Cfg,

		fields: repository.ProvideStore[customfielddomain.CustomField](p.DB),
		values: repository.ProvideStore[customfielddomain.CustomFieldValue](p.DB),
	}
}

func (r *Resolver) TicketRef(ctx context.Context, serviceID snowflake.ID, inline string) string {
	fieldID := r.resolveFieldID(ctx)

	if fieldID != 0 {
		stored, err := r.values.FindOne(ctx, &customfielddomain.CustomFieldValue{
			FieldID: fieldID,
			RelID:   serviceID,
		})
		if err != nil {
			r.log.Warn("ticket field lookup failed",
				zap.String("service_id", serviceID.String()),
				zap.Error(err),
			)
		} else if stored != nil && strings.TrimSpace(stored.Value) != "" {
			return strings.TrimSpace(stored.Value)
		}
	}

	if inline = strings.TrimSpace(inline); inline != "" {
		return html.EscapeString(inline)
	}

	return ""
}

func (r *Resolver) resolveFieldID(ctx context.Context) snowflake.ID {
	r.once.Do(func() {
		field, err := r.fields.FindOne(ctx, &customfielddomain.CustomField{
			Name: r.cfg.TicketFieldName,
			Type: customfielddomain.FieldTypeProduct,
		})
		if err != nil {
			r.log.Warn("ticket custom field resolution failed", zap.Error(err))
			return
		}
		if field == nil {
			r.log.Warn("ticket custom field not found, ticket references disabled",
				zap.String("field_name", r.cfg.TicketFieldName),
			)
			return
		}
		r.fieldID = field.ID
	})
	return r.fieldID
}

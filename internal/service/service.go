package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/sysuser/internal/events"
	"github.com/Skotchmaster/sysuser/internal/logging"
	"github.com/Skotchmaster/sysuser/internal/models"
	"github.com/Skotchmaster/sysuser/internal/token"
)

const SystemActor = "system"

type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.SysUser, error)
	FindByAccount(ctx context.Context, account string) (*models.SysUser, error)
	FindAll(ctx context.Context, f models.UserFilter) ([]models.SysUser, error)
	Page(ctx context.Context, keyword string, offset, limit int) (int64, []models.SysUser, error)
	Create(ctx context.Context, u *models.SysUser) error
	Update(ctx context.Context, u *models.SysUser) error
	Delete(ctx context.Context, id string) error
}

type TokenIssuer interface {
	Issue(p token.Principal) (string, error)
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// publish never fails the caller; delivery errors are logged.
func publish(ctx context.Context, pub events.Publisher, ev events.UserEvent) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev.UserID, ev); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "event", ev.Type, "user_id", ev.UserID, "error", err)
	}
}

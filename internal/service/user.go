package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/sysuser/internal/apperror"
	"github.com/Skotchmaster/sysuser/internal/events"
	"github.com/Skotchmaster/sysuser/internal/hash"
	"github.com/Skotchmaster/sysuser/internal/logging"
	"github.com/Skotchmaster/sysuser/internal/models"
	"github.com/Skotchmaster/sysuser/internal/repo"
	"github.com/Skotchmaster/sysuser/internal/transport"
)

type UserService struct {
	Repo   UserStore
	Events events.Publisher
	Now    func() time.Time
}

func (s *UserService) List(ctx context.Context, f models.UserFilter) ([]models.SysUser, error) {
	users, err := s.Repo.FindAll(ctx, f)
	if err != nil {
		logging.FromContext(ctx).Error("list_users_failed", "svc", "user.list", "error", err)
		return nil, apperror.Storage(err)
	}
	return users, nil
}

func (s *UserService) Page(ctx context.Context, q transport.UserPageQuery) (*transport.PageInfo[models.SysUser], error) {
	offset, limit := q.Bounds()
	total, users, err := s.Repo.Page(ctx, q.Keyword, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("page_users_failed", "svc", "user.page", "error", err)
		return nil, apperror.Storage(err)
	}
	return &transport.PageInfo[models.SysUser]{
		List:  users,
		Total: total,
		Page:  uint64(q.Page),
		Size:  uint64(q.Size),
	}, nil
}

func (s *UserService) Create(ctx context.Context, req transport.UserAddRequest, actor string) (*models.SysUser, error) {
	l := logging.FromContext(ctx).With("svc", "user.create")

	birthday, err := models.ParseDate(req.Birthday)
	if err != nil {
		return nil, apperror.Validation("birthday", "birthday must be a date in YYYY-MM-DD format", nil)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("create_user_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, apperror.PasswordHashing(err)
	}

	user := models.SysUser{
		ID:          uuid.NewString(),
		Username:    req.Username,
		Gender:      req.Gender,
		Account:     req.Account,
		Password:    pwHash,
		MobilePhone: req.MobilePhone,
		Birthday:    birthday,
		Enabled:     req.Enabled != nil && *req.Enabled,
		CreatedDate: clock(s.Now).now(),
		CreatedBy:   actorOrSystem(actor),
	}

	if err := s.Repo.Create(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrAccountTaken) {
			l.Warn("create_user_failed", "status", 400, "reason", "account taken", "account", req.Account)
			return nil, apperror.Business(apperror.AccountAlreadyExists)
		}
		l.Error("create_user_failed", "status", 500, "reason", "cannot insert user", "error", err)
		return nil, apperror.Storage(err)
	}

	publish(ctx, s.Events, events.UserEvent{
		Type:     events.UserCreated,
		UserID:   user.ID,
		Username: user.Username,
		Actor:    user.CreatedBy,
		At:       user.CreatedDate,
	})
	l.Info("user_created", "user_id", user.ID)
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, req transport.UserUpdateRequest, actor string) (*models.SysUser, error) {
	l := logging.FromContext(ctx).With("svc", "user.update")

	user, err := s.Repo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, s.lookupError(ctx, "update_user_failed", req.ID, err)
	}

	birthday, err := models.ParseDate(req.Birthday)
	if err != nil {
		return nil, apperror.Validation("birthday", "birthday must be a date in YYYY-MM-DD format", nil)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("update_user_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, apperror.PasswordHashing(err)
	}

	now := clock(s.Now).now()
	updatedBy := actorOrSystem(actor)
	user.Username = req.Username
	user.Gender = req.Gender
	user.Account = req.Account
	user.Password = pwHash
	user.MobilePhone = req.MobilePhone
	user.Birthday = birthday
	user.Enabled = req.Enabled != nil && *req.Enabled
	user.UpdatedDate = &now
	user.UpdatedBy = &updatedBy

	if err := s.Repo.Update(ctx, user); err != nil {
		if errors.Is(err, repo.ErrAccountTaken) {
			l.Warn("update_user_failed", "status", 400, "reason", "account taken", "account", req.Account)
			return nil, apperror.Business(apperror.AccountAlreadyExists)
		}
		return nil, s.lookupError(ctx, "update_user_failed", req.ID, err)
	}

	publish(ctx, s.Events, events.UserEvent{
		Type:     events.UserUpdated,
		UserID:   user.ID,
		Username: user.Username,
		Actor:    updatedBy,
		At:       now,
	})
	l.Info("user_updated", "user_id", user.ID)
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id, actor string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return s.lookupError(ctx, "delete_user_failed", id, err)
	}

	publish(ctx, s.Events, events.UserEvent{
		Type:   events.UserDeleted,
		UserID: id,
		Actor:  actorOrSystem(actor),
		At:     clock(s.Now).now(),
	})
	logging.FromContext(ctx).Info("user_deleted", "svc", "user.delete", "user_id", id)
	return nil
}

func (s *UserService) lookupError(ctx context.Context, event, id string, err error) error {
	l := logging.FromContext(ctx)
	if errors.Is(err, repo.ErrUserNotFound) {
		l.Warn(event, "status", 400, "reason", "user not found", "user_id", id)
		return apperror.Business(apperror.FindNotUser)
	}
	l.Error(event, "status", 500, "user_id", id, "error", err)
	return apperror.Storage(err)
}

func actorOrSystem(actor string) string {
	if actor == "" {
		return SystemActor
	}
	return actor
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/sysuser/internal/apperror"
	"github.com/Skotchmaster/sysuser/internal/events"
	"github.com/Skotchmaster/sysuser/internal/hash"
	"github.com/Skotchmaster/sysuser/internal/logging"
	"github.com/Skotchmaster/sysuser/internal/repo"
	"github.com/Skotchmaster/sysuser/internal/token"
	"github.com/Skotchmaster/sysuser/internal/transport"
)

type AuthService struct {
	Repo   UserStore
	Tokens TokenIssuer
	Events events.Publisher
	Now    func() time.Time
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*transport.LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindByAccount(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("login_failed", "status", 400, "reason", "unknown account")
			return nil, apperror.Business(apperror.UserNameOrPasswordError)
		}
		l.Error("login_failed", "status", 500, "reason", "cannot load user", "error", err)
		return nil, apperror.Storage(err)
	}

	if user.Password == "" {
		l.Error("login_failed", "status", 400, "reason", "stored password missing", "user_id", user.ID)
		return nil, apperror.Business(apperror.DbPwdNotFind)
	}

	ok, err := hash.CheckPassword(user.Password, password)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot compare password hash", "user_id", user.ID, "error", err)
		return nil, apperror.PasswordHashing(err)
	}
	if !ok {
		l.Warn("login_failed", "status", 400, "reason", "wrong password", "user_id", user.ID)
		return nil, apperror.Business(apperror.UserNameOrPasswordError)
	}

	raw, err := s.Tokens.Issue(token.Principal{
		ID:          user.ID,
		Username:    user.Username,
		Roles:       []string{},
		Permissions: []string{},
	})
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, apperror.Internal(err)
	}

	publish(ctx, s.Events, events.UserEvent{
		Type:     events.UserLoggedIn,
		UserID:   user.ID,
		Username: user.Username,
		Actor:    user.Username,
		At:       clock(s.Now).now(),
	})
	l.Info("login_successful", "user_id", user.ID)

	return &transport.LoginResult{AccessToken: raw}, nil
}

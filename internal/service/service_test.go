package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sysuser/internal/db/dbtest"
	"github.com/Skotchmaster/sysuser/internal/events"
	"github.com/Skotchmaster/sysuser/internal/hash"
	"github.com/Skotchmaster/sysuser/internal/models"
	"github.com/Skotchmaster/sysuser/internal/repo"
	"github.com/Skotchmaster/sysuser/internal/token"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.UserEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := event.(events.UserEvent); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// brokenStore fails every call with a storage error.
type brokenStore struct{ err error }

func (b brokenStore) FindByID(context.Context, string) (*models.SysUser, error) { return nil, b.err }
func (b brokenStore) FindByAccount(context.Context, string) (*models.SysUser, error) {
	return nil, b.err
}
func (b brokenStore) FindAll(context.Context, models.UserFilter) ([]models.SysUser, error) {
	return nil, b.err
}
func (b brokenStore) Page(context.Context, string, int, int) (int64, []models.SysUser, error) {
	return 0, nil, b.err
}
func (b brokenStore) Create(context.Context, *models.SysUser) error { return b.err }
func (b brokenStore) Update(context.Context, *models.SysUser) error { return b.err }
func (b brokenStore) Delete(context.Context, string) error          { return b.err }

var errDown = errors.New("database is down")

func newTokens(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.New(token.Config{
		Secret:   []byte("test-jwt-secret"),
		Audience: "sysuser-test",
		Issuer:   "sysuser-test",
		Lifetime: time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func seedUser(t *testing.T, r *repo.GormRepo, account, password string) *models.SysUser {
	t.Helper()
	pw, err := hash.HashPassword(password)
	require.NoError(t, err)
	birthday, err := models.ParseDate("1990-07-15")
	require.NoError(t, err)

	u := &models.SysUser{
		ID:          "id-" + account,
		Username:    "name-" + account,
		Gender:      models.GenderFemale,
		Account:     account,
		Password:    pw,
		MobilePhone: "13812345678",
		Birthday:    birthday,
		Enabled:     true,
		CreatedDate: fixedNow,
		CreatedBy:   SystemActor,
	}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return repo.New(dbtest.Open(t))
}

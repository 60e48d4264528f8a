package repo

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sysuser/internal/db/dbtest"
	"github.com/Skotchmaster/sysuser/internal/models"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newUser(i int) models.SysUser {
	birthday, _ := models.ParseDate("1990-07-15")
	gender := models.GenderMale
	if i%2 == 1 {
		gender = models.GenderFemale
	}
	return models.SysUser{
		ID:          fmt.Sprintf("id-%03d", i),
		Username:    fmt.Sprintf("user%03d", i),
		Gender:      gender,
		Account:     fmt.Sprintf("acct%03d", i),
		Password:    "hash",
		MobilePhone: "13812345678",
		Birthday:    birthday,
		Enabled:     i%3 != 0,
		CreatedDate: baseTime.Add(time.Duration(i) * time.Minute),
		CreatedBy:   "system",
	}
}

func seed(t *testing.T, r *GormRepo, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		u := newUser(i)
		require.NoError(t, r.Create(context.Background(), &u))
	}
}

func TestGormRepo_Page_Math(t *testing.T) {
	t.Parallel()

	r := New(dbtest.Open(t))
	seed(t, r, 42)
	ctx := context.Background()

	tests := []struct {
		page      int
		wantRows  int
		wantFirst string
	}{
		{page: 1, wantRows: 15, wantFirst: "id-042"},
		{page: 2, wantRows: 15, wantFirst: "id-027"},
		{page: 3, wantRows: 12, wantFirst: "id-012"},
		{page: 4, wantRows: 0},
	}

	for _, tt := range tests {
		offset := (tt.page - 1) * 15
		total, users, err := r.Page(ctx, "", offset, 15)
		require.NoError(t, err)
		assert.Equal(t, int64(42), total, "page %d", tt.page)
		require.Len(t, users, tt.wantRows, "page %d", tt.page)
		if tt.wantRows > 0 {
			assert.Equal(t, tt.wantFirst, users[0].ID, "newest first on page %d", tt.page)
		}
	}
}

func TestGormRepo_Page_Keyword(t *testing.T) {
	t.Parallel()

	r := New(dbtest.Open(t))
	seed(t, r, 12)
	ctx := context.Background()

	total, users, err := r.Page(ctx, "user01", 0, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 3)
	assert.Equal(t, "id-012", users[0].ID)

	total, _, err = r.Page(ctx, "id-007", 0, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	total, _, err = r.Page(ctx, "%", 0, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total, "wildcards are matched literally")
}

func TestGormRepo_FindAll_Filter(t *testing.T) {
	t.Parallel()

	r := New(dbtest.Open(t))
	seed(t, r, 6)
	ctx := context.Background()
	enabled := true

	tests := []struct {
		name    string
		filter  models.UserFilter
		wantIDs []string
	}{
		{name: "no filter", filter: models.UserFilter{}, wantIDs: []string{"id-006", "id-005", "id-004", "id-003", "id-002", "id-001"}},
		{name: "female", filter: models.UserFilter{Gender: models.GenderFemale}, wantIDs: []string{"id-005", "id-003", "id-001"}},
		{name: "enabled males", filter: models.UserFilter{Gender: models.GenderMale, Enabled: &enabled}, wantIDs: []string{"id-004", "id-002"}},
		{name: "username prefix", filter: models.UserFilter{UsernamePrefix: "user00"}, wantIDs: []string{"id-006", "id-005", "id-004", "id-003", "id-002", "id-001"}},
		{name: "no match", filter: models.UserFilter{UsernamePrefix: "nobody"}, wantIDs: []string{}},
	}

	for _, tt := range tests {
		users, err := r.FindAll(ctx, tt.filter)
		require.NoError(t, err, tt.name)
		ids := make([]string, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		assert.Equal(t, tt.wantIDs, ids, tt.name)
	}
}

func TestGormRepo_CRUD(t *testing.T) {
	t.Parallel()

	r := New(dbtest.Open(t))
	ctx := context.Background()

	u := newUser(1)
	require.NoError(t, r.Create(ctx, &u))

	dup := newUser(2)
	dup.Account = u.Account
	assert.ErrorIs(t, r.Create(ctx, &dup), ErrAccountTaken)

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, "1990-07-15", got.Birthday.String())

	got, err = r.FindByAccount(ctx, u.Account)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	now := baseTime.Add(time.Hour)
	actor := "admin01"
	u.Username = "renamed"
	u.Enabled = false
	u.UpdatedDate = &now
	u.UpdatedBy = &actor
	require.NoError(t, r.Update(ctx, &u))

	got, err = r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Username)
	assert.False(t, got.Enabled)
	require.NotNil(t, got.UpdatedBy)
	assert.Equal(t, "admin01", *got.UpdatedBy)

	missing := newUser(9)
	assert.ErrorIs(t, r.Update(ctx, &missing), ErrUserNotFound)

	other := newUser(3)
	require.NoError(t, r.Create(ctx, &other))
	other.Account = u.Account
	assert.ErrorIs(t, r.Update(ctx, &other), ErrAccountTaken)

	require.NoError(t, r.Delete(ctx, u.ID))
	assert.ErrorIs(t, r.Delete(ctx, u.ID), ErrUserNotFound)

	_, err = r.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = r.FindByAccount(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGormRepo_Page_SingleTransaction(t *testing.T) {
	t.Parallel()

	gdb := dbtest.Open(t)
	r := New(gdb)
	seed(t, r, 5)

	var (
		mu    sync.Mutex
		pools []gorm.ConnPool
	)
	require.NoError(t, gdb.Callback().Query().After("gorm:query").Register("repo_test:conn_pool", func(d *gorm.DB) {
		mu.Lock()
		defer mu.Unlock()
		pools = append(pools, d.Statement.ConnPool)
	}))

	total, users, err := r.Page(context.Background(), "", 0, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, users, 3)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, pools, 2)
	first, ok := pools[0].(*sql.Tx)
	require.True(t, ok, "count ran outside a transaction")
	assert.Same(t, first, pools[1])
	assert.Nil(t, snapshotTx(gdb))
}

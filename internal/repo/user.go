package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/sysuser/internal/models"
)

const newestFirst = "created_date DESC, id ASC"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func keywordScope(keyword string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if keyword == "" {
			return db
		}
		pattern := "%" + likeEscaper.Replace(keyword) + "%"
		return db.Where(`username LIKE ? ESCAPE '\' OR id LIKE ? ESCAPE '\'`, pattern, pattern)
	}
}

func filterScope(f models.UserFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Gender != "" {
			db = db.Where("gender = ?", f.Gender)
		}
		if f.Enabled != nil {
			db = db.Where("enabled = ?", *f.Enabled)
		}
		if f.UsernamePrefix != "" {
			db = db.Where(`username LIKE ? ESCAPE '\'`, likeEscaper.Replace(f.UsernamePrefix)+"%")
		}
		return db
	}
}

func (r *GormRepo) FindByID(ctx context.Context, id string) (*models.SysUser, error) {
	var user models.SysUser
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindByAccount(ctx context.Context, account string) (*models.SysUser, error) {
	var user models.SysUser
	if err := r.DB.WithContext(ctx).Where("account = ?", account).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindAll(ctx context.Context, f models.UserFilter) ([]models.SysUser, error) {
	users := make([]models.SysUser, 0)
	if err := r.DB.WithContext(ctx).
		Model(&models.SysUser{}).
		Scopes(filterScope(f)).
		Order(newestFirst).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Page reads the total and the requested slice in one read-only
// transaction so both come from the same snapshot.
func (r *GormRepo) Page(ctx context.Context, keyword string, offset, limit int) (int64, []models.SysUser, error) {
	var total int64
	users := make([]models.SysUser, 0, limit)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SysUser{}).
			Scopes(keywordScope(keyword)).
			Count(&total).Error; err != nil {
			return err
		}
		return tx.Model(&models.SysUser{}).
			Scopes(keywordScope(keyword)).
			Order(newestFirst).
			Offset(offset).
			Limit(limit).
			Find(&users).Error
	}, snapshotTx(r.DB))
	if err != nil {
		return 0, nil, err
	}
	return total, users, nil
}

// snapshotTx asks postgres for repeatable read; under its default read
// committed level each statement would see its own snapshot.
func snapshotTx(db *gorm.DB) *sql.TxOptions {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}

func (r *GormRepo) Create(ctx context.Context, u *models.SysUser) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := accountFree(tx, u.Account, ""); err != nil {
			return err
		}
		return tx.Create(u).Error
	})
}

func accountFree(tx *gorm.DB, account, exceptID string) error {
	q := tx.Model(&models.SysUser{}).Where("account = ?", account)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var taken int64
	if err := q.Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return ErrAccountTaken
	}
	return nil
}

func (r *GormRepo) Update(ctx context.Context, u *models.SysUser) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := accountFree(tx, u.Account, u.ID); err != nil {
			return err
		}

		res := tx.Model(&models.SysUser{}).
			Where("id = ?", u.ID).
			Select("username", "gender", "account", "password", "mobile_phone", "birthday", "enabled", "updated_date", "updated_by").
			Updates(u)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (r *GormRepo) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.SysUser{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

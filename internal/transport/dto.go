package transport

import (
	"math"
	"strconv"

	"github.com/Skotchmaster/sysuser/internal/apperror"
	"github.com/Skotchmaster/sysuser/internal/extract"
	"github.com/Skotchmaster/sysuser/internal/models"
	"github.com/Skotchmaster/sysuser/internal/util"
)

type PageQuery struct {
	Page extract.Uint `json:"page" query:"page" validate:"min=1"`
	Size extract.Uint `json:"size" query:"size" validate:"min=1,max=1000"`
}

func (p *PageQuery) SetDefaults() {
	p.Page = util.DefaultPage
	p.Size = util.DefaultSize
}

func (p PageQuery) Bounds() (offset, limit int) {
	return util.Calculate(p.Page.Int(), p.Size.Int())
}

type UserPageQuery struct {
	Keyword string `json:"keyword" query:"keyword" validate:"max=50"`
	PageQuery
}

func (q *UserPageQuery) Check() error {
	if uint64(q.Page-1) > math.MaxInt32/uint64(q.Size) {
		msg := "page out of range"
		return apperror.Validation("page", msg, []string{msg})
	}
	return nil
}

type PageInfo[T any] struct {
	List  []T    `json:"list"`
	Total int64  `json:"total"`
	Page  uint64 `json:"page"`
	Size  uint64 `json:"size"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=6,max=20"`
	Password string `json:"password" validate:"required,min=6,max=20"`
}

type LoginResult struct {
	AccessToken string `json:"accessToken"`
}

type UserAddRequest struct {
	Username    string        `json:"username" validate:"required,min=2,max=20"`
	Gender      models.Gender `json:"gender" validate:"required,oneof=male female"`
	Account     string        `json:"account" validate:"required,min=1,max=20"`
	Password    string        `json:"password" validate:"required,min=6,max=20"`
	MobilePhone string        `json:"mobilePhone" validate:"required,mobile"`
	Birthday    string        `json:"birthday" validate:"required,date"`
	Enabled     *bool         `json:"enabled" validate:"required"`
}

type UserUpdateRequest struct {
	ID string `json:"id" validate:"required,max=64"`
	UserAddRequest
}

type UserIDPath struct {
	ID string `param:"id" validate:"required,max=64"`
}

type UserFilterQuery struct {
	Gender   models.Gender `query:"gender" validate:"omitempty,oneof=male female"`
	Enabled  string        `query:"enabled" validate:"omitempty,oneof=true false"`
	Username string        `query:"username" validate:"max=20"`
}

func (q UserFilterQuery) Filter() models.UserFilter {
	f := models.UserFilter{Gender: q.Gender, UsernamePrefix: q.Username}
	if b, err := strconv.ParseBool(q.Enabled); err == nil {
		f.Enabled = &b
	}
	return f
}

package models

import (
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type SysUser struct {
	ID          string     `gorm:"primaryKey;type:varchar(64)"        json:"id"`
	Username    string     `gorm:"type:varchar(20);not null;index"    json:"username"`
	Gender      Gender     `gorm:"type:varchar(8);not null"           json:"gender"`
	Account     string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"account"`
	Password    string     `gorm:"type:varchar(128);not null"         json:"-"`
	MobilePhone string     `gorm:"type:varchar(16);not null"          json:"mobilePhone"`
	Birthday    Date       `gorm:"not null"                           json:"birthday"`
	Enabled     bool       `gorm:"not null"                           json:"enabled"`
	CreatedDate time.Time  `gorm:"not null;index"                     json:"createdDate"`
	UpdatedDate *time.Time `json:"updatedDate,omitempty"`
	CreatedBy   string     `gorm:"type:varchar(64);not null"          json:"createdBy"`
	UpdatedBy   *string    `gorm:"type:varchar(64)"                   json:"updatedBy,omitempty"`
}

func (SysUser) TableName() string { return "sys_user" }

// UserFilter is the predicate of a list query; zero fields do not filter.
type UserFilter struct {
	Gender         Gender
	Enabled        *bool
	UsernamePrefix string
}

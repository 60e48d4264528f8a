package apperror

import "fmt"

// Code is a business error code carried in the response envelope.
type Code int

const (
	UserNameOrPasswordError Code = 5000
	FindNotUser             Code = 5001
	DbPwdNotFind            Code = 5002
	AccountAlreadyExists    Code = 5003
)

var codeMessages = map[Code]string{
	UserNameOrPasswordError: "username or password error",
	FindNotUser:             "user not found",
	DbPwdNotFind:            "stored password not found",
	AccountAlreadyExists:    "account already exists",
}

func (c Code) Message() string {
	if m, ok := codeMessages[c]; ok {
		return m
	}
	return fmt.Sprintf("business error %d", int(c))
}

package keywordize

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrConfig         ErrorKind = "config"
	ErrFieldCollision ErrorKind = "field_collision"
	ErrUserFunc       ErrorKind = "user_func"
	ErrIO             ErrorKind = "io"
	ErrSQL            ErrorKind = "sql"
	ErrNotFound       ErrorKind = "not_found"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Field != "" {
		base = fmt.Sprintf("%s (field=%s)", base, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func New(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func ConfigError(msg string) *Error {
	return &Error{Kind: ErrConfig, Message: msg}
}

func CollisionError(field string, cause error) *Error {
	return &Error{Kind: ErrFieldCollision, Message: "keyword field collides with a declared field", Field: field, Cause: cause}
}

func UserFuncError(field string, cause error) *Error {
	msg := "custom keyword function failed"
	if field != "" {
		msg = "map function failed"
	}
	return &Error{Kind: ErrUserFunc, Message: msg, Field: field, Cause: cause}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

package models

import "errors"

var (
	ErrDuplicateIdentity  = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidSortKey     = errors.New("invalid sort key")
	ErrForbidden          = errors.New("forbidden")
)

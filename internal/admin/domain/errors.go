package domain

import "errors"

var (
	ErrAdminNotFound      = errors.New("admin not found")
	ErrAdminExists        = errors.New("admin already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

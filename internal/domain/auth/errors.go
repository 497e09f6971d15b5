package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials: use full name as login and employee ID as password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

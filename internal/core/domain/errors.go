package domain

import "errors"

var (
	ErrUserExists         = errors.New("username already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrChildNotFound      = errors.New("child not found")
	ErrParentNotFound     = errors.New("parent account not found")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrTooManyAttempts    = errors.New("too many failed attempts, try again later")
	ErrInvalidInput       = errors.New("invalid input")
)

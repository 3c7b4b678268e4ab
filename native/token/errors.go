package token

import "errors"

var (
	ErrNilState      = errors.New("token registry: state not configured")
	ErrUnauthorized  = errors.New("token registry: unauthorized")
	ErrInvalidClass  = errors.New("token registry: invalid class definition")
	ErrClassExists   = errors.New("token registry: class already exists")
	ErrClassNotFound = errors.New("token registry: class not found")
	ErrTokenExists   = errors.New("token registry: token already exists")
	ErrTokenNotFound = errors.New("token registry: token not found")
	ErrTokenBurned   = errors.New("token registry: token id retired")
	ErrTokenFrozen   = errors.New("token registry: token frozen")
)

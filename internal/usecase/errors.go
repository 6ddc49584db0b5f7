package usecase

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("resource not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrDependencyUnavailable  = errors.New("dependency unavailable")
	ErrNoActiveSeason         = errors.New("no active season")
	ErrConcurrentModification = errors.New("concurrent modification of pick slot")
	ErrTokenNotRedeemable     = errors.New("token is not redeemable")
)

package user

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailAlreadyExists = errors.New("email address is already in use")
	ErrNameRequired       = errors.New("full name is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidRole        = errors.New("role must be admin, doctor or staff")
	ErrInvalidTutorial    = errors.New("invalid tutorial key")
	ErrSelfModification   = errors.New("admins cannot change their own role or status")
	ErrLastAdmin          = errors.New("the clinic must keep at least one active admin")
)

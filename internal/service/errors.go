package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateIdentity  = errors.New("user already exists")
	ErrIdentityNotFound   = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("wrong password")
	ErrListingNotFound    = errors.New("listing not found")
	ErrCreatorNotFound    = errors.New("listing creator does not exist")
)

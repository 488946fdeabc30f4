package errs

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")

	ErrInvalidInput       = errors.New("invalid input")
	ErrStorageFailure     = errors.New("media storage failure")
	ErrPersistenceFailure = errors.New("record persistence failure")
)

package usecase

import "errors"

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrNotFound                 = errors.New("resource not found")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrDependencyUnavailable    = errors.New("dependency unavailable")
	ErrSlotConflict             = errors.New("slot conflict")
	ErrInvalidState             = errors.New("invalid state transition")
	ErrSelfRequest              = errors.New("team cannot request its own slot")
	ErrConflict                 = errors.New("concurrent update conflict")
	ErrScheduleValidationFailed = errors.New("schedule validation failed")
)

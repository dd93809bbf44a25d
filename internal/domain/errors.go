package domain

import "errors"

// validationSentinels lists every validation error a domain entity can
// surface. New sentinels must be added here so callers classifying errors
// stay in sync.
var validationSentinels = []error{
	ErrEmptyUserID,
	ErrEmptyEmail,
	ErrInvalidEmail,
	ErrEmptyName,
	ErrNameTooLong,
	ErrEmptyPassword,
	ErrPasswordTooShort,
	ErrPasswordTooLong,
	ErrPasswordTooWeak,
	ErrEmptyHashedPassword,
	ErrEmptyTaskTitle,
	ErrTaskTitleTooLong,
	ErrTaskDescriptionTooLong,
	ErrEmptyTaskOwner,
}

// IsValidationError reports whether err is, or wraps, one of the domain
// validation sentinels.
func IsValidationError(err error) bool {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

package alert

import "errors"

var (
	// ErrInvalidSettings is returned when an alert settings patch fails validation.
	ErrInvalidSettings = errors.New("invalid alert settings")
	// ErrNoRecipientAddress is returned when the recipient of a notification has no email address.
	ErrNoRecipientAddress = errors.New("recipient has no email address")
)

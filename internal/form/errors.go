package form

import (
	"errors"
	"fmt"
)

// ErrSubmitPending is returned when a submission is attempted while another
// one from the same controller is still in flight.
var ErrSubmitPending = errors.New("submission already in progress")

// ValidationError is a client-side failure on a required field. It is shown
// inline and no request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// UserMessenger is implemented by errors that carry a message meant for the
// person at the keyboard, such as a server's {data: {message}} body.
type UserMessenger interface {
	UserMessage() string
}

// ErrorMessage extracts the text to show for err. Validation errors show
// their message, errors carrying a non-empty user message show that, and
// anything else shows fallback.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var um UserMessenger
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}

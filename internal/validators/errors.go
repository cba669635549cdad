package validators

import "strings"

// Messages reported for invalid user input.
const (
	MsgUsernameRequired = "username can not be null"
	MsgUsernameLength   = "username length should between 2-20"
	MsgInvalidEmail     = "should enter valid email"
)

// ValidationError collects every field violation found in one input.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

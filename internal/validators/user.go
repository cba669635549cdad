// Package validators checks user input before it reaches the service layer.
package validators

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/usermgmt/apiserver/types"
)

// userRules mirrors UserInput with plain pointers so the field rules can be
// expressed as struct tags. A nil pointer means the field was not supplied.
type userRules struct {
	Username *string `validate:"omitnil,min=2,max=20"`
	Email    *string `validate:"omitnil,email"`
}

// UserValidator validates UserInput for create and update.
type UserValidator struct {
	validate *validator.Validate
}

func NewUserValidator() *UserValidator {
	return &UserValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidateCreate requires a username and checks every supplied field.
// All violations are reported together.
func (v *UserValidator) ValidateCreate(in types.UserInput) error {
	var messages []string
	if _, ok := in.Username.Value(); !ok {
		messages = append(messages, MsgUsernameRequired)
	}
	messages = append(messages, v.check(in)...)
	return asError(messages)
}

// ValidateUpdate checks only the fields present in the input. An explicit
// null username is rejected because the username can not be cleared.
func (v *UserValidator) ValidateUpdate(in types.UserInput) error {
	var messages []string
	if in.Username.IsNull() {
		messages = append(messages, MsgUsernameRequired)
	}
	messages = append(messages, v.check(in)...)
	return asError(messages)
}

func (v *UserValidator) check(in types.UserInput) []string {
	rules := userRules{
		Username: in.Username.Ptr(),
		Email:    in.Email.Ptr(),
	}

	err := v.validate.Struct(rules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.StructField() {
		case "Username":
			messages = append(messages, MsgUsernameLength)
		case "Email":
			messages = append(messages, MsgInvalidEmail)
		default:
			messages = append(messages, fe.Error())
		}
	}
	return messages
}

func asError(messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	return &ValidationError{Messages: messages}
}

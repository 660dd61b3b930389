package domain

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"pairpad/errors"
)

var validate = validator.New()

type joinProfile struct {
	DisplayName string `validate:"required,min=3,max=15"`
}

// ValidateDisplayName enforces the 3-15 character, alphanumeric/underscore
// naming rule. It runs once per session, before the first join or create.
func ValidateDisplayName(name string) error {
	if err := validate.Struct(joinProfile{DisplayName: name}); err != nil {
		return errors.ErrInvalidDisplayName
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return errors.ErrInvalidDisplayName
		}
	}
	return nil
}

func ValidateRoomName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.ErrEmptyRoomName
	}
	return nil
}

func ValidateRoomID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.ErrEmptyRoomID
	}
	return nil
}

// ValidateChatText rejects empty or whitespace-only messages before any
// network call is made.
func ValidateChatText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.ErrEmptyMessage
	}
	return nil
}

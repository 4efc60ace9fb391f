package utils

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"
)

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}

	_, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email format")
	}

	return nil
}

func ValidateRequired(field, fieldName string) error {
	if strings.TrimSpace(field) == "" {
		return errors.New(fieldName + " is required")
	}
	return nil
}

func ValidateLength(field, fieldName string, min, max int) error {
	length := len(strings.TrimSpace(field))
	if length < min {
		return errors.New(fieldName + " must be at least " + strconv.Itoa(min) + " characters")
	}
	if length > max {
		return errors.New(fieldName + " must be at most " + strconv.Itoa(max) + " characters")
	}
	return nil
}

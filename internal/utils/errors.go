package utils

import (
	"errors"
	"fmt"
)

type ErrorCategory string

const (
	CategoryGeneric    ErrorCategory = "generic"
	CategoryValidation ErrorCategory = "validation"
	CategoryProtocol   ErrorCategory = "protocol"
	CategoryConfig     ErrorCategory = "config"
	CategoryTheme      ErrorCategory = "theme"
)

// TavernError is the error type shared by every package. Sentinels are
// declared with NewTavernError and refined with WithDetails, which keeps
// errors.Is working against the sentinel.
type TavernError struct {
	Category ErrorCategory
	Message  string
	Details  string
	parent   *TavernError
}

func NewTavernError(msg string) *TavernError {
	return &TavernError{Category: CategoryGeneric, Message: msg}
}

func newCategoryError(cat ErrorCategory, msg string) *TavernError {
	return &TavernError{Category: cat, Message: msg}
}

func (e *TavernError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

// WithDetails returns a copy of e carrying extra context.
func (e *TavernError) WithDetails(details string) *TavernError {
	return &TavernError{
		Category: e.Category,
		Message:  e.Message,
		Details:  details,
		parent:   e,
	}
}

func (e *TavernError) WithDetailsf(format string, args ...any) *TavernError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

func (e *TavernError) Unwrap() error {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func ValidationError(msg string) *TavernError {
	return newCategoryError(CategoryValidation, msg)
}

func ProtocolError(msg string) *TavernError {
	return newCategoryError(CategoryProtocol, msg)
}

func ConfigError(msg string) *TavernError {
	return newCategoryError(CategoryConfig, msg)
}

func ThemeError(msg string) *TavernError {
	return newCategoryError(CategoryTheme, msg)
}

func isCategory(err error, cat ErrorCategory) bool {
	var te *TavernError
	if errors.As(err, &te) {
		return te.Category == cat
	}
	return false
}

func IsValidationError(err error) bool { return isCategory(err, CategoryValidation) }
func IsProtocolError(err error) bool   { return isCategory(err, CategoryProtocol) }
func IsConfigError(err error) bool     { return isCategory(err, CategoryConfig) }
func IsThemeError(err error) bool      { return isCategory(err, CategoryTheme) }

package services

import (
	"errors"
	"fmt"
)

// Configuration errors are resolved locally without touching the network
var (
	ErrMissingAPIKey = errors.New("gemini API key is missing")
	ErrEmptyAPIKey   = errors.New("please enter an API key")
	ErrUnknownModel  = errors.New("unknown model")
	ErrUnknownTheme  = errors.New("unknown theme")
)

// Input and state errors
var (
	ErrEmptyCommand = errors.New("command is empty")
	ErrBusy         = errors.New("another request is in progress")
)

// Authentication errors
var (
	ErrLoginFailed = errors.New("login failed")
)

// ServerError is a failure the agent reported inside a successful response
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return "agent reported an error"
	}
	return fmt.Sprintf("agent reported an error: %s", e.Message)
}

// IsServerError reports whether err carries a server-reported failure
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// IsConfigurationError reports errors the user fixes in settings
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingAPIKey) ||
		errors.Is(err, ErrEmptyAPIKey) ||
		errors.Is(err, ErrUnknownModel) ||
		errors.Is(err, ErrUnknownTheme)
}

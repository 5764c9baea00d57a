package mock

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is matched by every ConfigurationError.
	ErrInvalidConfiguration = errors.New("invalid mock configuration")

	ErrNoMock                   = errors.New("no mock defined")
	ErrEmptyConfiguration       = errors.New("mock configuration is empty")
	ErrUnknownConfigurationType = errors.New("unknown mock configuration type")
	ErrMissingAPI               = errors.New("missing api")
	ErrFamilyMismatch           = errors.New("configuration does not match the blockchain family")

	// ErrUnknownWallet is returned when a wallet identity is not supported.
	ErrUnknownWallet = errors.New("unknown wallet")
)

// ConfigurationError is returned when a mock configuration is rejected before anything is
// registered.
type ConfigurationError struct {
	// Name is the engine name the message is prefixed with.
	Name string
	// Err is one of the configuration sentinels, e.g. ErrMissingAPI.
	Err error
	// Type is the sub-configuration at fault, e.g. "request". Empty when the whole
	// configuration is at fault.
	Type string
	// Configuration is the JSON rendering of the rejected configuration, with missing apis
	// replaced by APIPlaceholder and providers by ProviderPlaceholder. Only set for ErrMissingAPI.
	Configuration string
	// Detail adds context to the message of errors other than ErrMissingAPI.
	Detail string
}

func (e *ConfigurationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrMissingAPI):
		return fmt.Sprintf("%s: Please provide the api for the %s: %s", e.Name, e.Type, e.Configuration)
	case errors.Is(e.Err, ErrNoMock):
		return e.Name + ": No mock defined!"
	case errors.Is(e.Err, ErrEmptyConfiguration):
		return e.Name + ": Mock configuration is empty!"
	case errors.Is(e.Err, ErrUnknownConfigurationType):
		return fmt.Sprintf("%s: Unknown mock configuration type! (%s)", e.Name, e.Detail)
	default:
		msg := fmt.Sprintf("%s: %v", e.Name, e.Err)
		if e.Detail != "" {
			msg += ": " + e.Detail
		}

		return msg
	}
}

// Unwrap exposes both ErrInvalidConfiguration and the specific sentinel.
func (e *ConfigurationError) Unwrap() []error {
	return []error{ErrInvalidConfiguration, e.Err}
}

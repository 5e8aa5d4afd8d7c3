package verifier

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrEmptyName                      = errors.New("empty name")
	ErrNameAlreadySet                 = errors.New("name already set")
	ErrPactURINotSet                  = errors.New("pact uri not set")
	ErrNoInteractions                 = errors.New("filter yielded no interactions")
	ErrEmptyProviderState             = errors.New("empty provider state name")
	ErrProviderStateAlreadyRegistered = errors.New("provider state already registered")
	ErrUnknownProviderState           = errors.New("provider state not registered")
	ErrMissingPublishLink             = errors.New("publish verification results link missing")
	ErrNoMatcher                      = errors.New("no message matcher configured")
)

// ConfigurationError reports invalid or missing caller input. It is always
// raised before any interaction is processed.
type ConfigurationError struct {
	Msg string
	Err error
}

func configErrorf(err error, format string, a ...interface{}) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, a...), Err: err}
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return "configuration error: " + e.Msg
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Msg, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
func (e *ConfigurationError) Cause() error  { return e.Err }

// RetrievalError reports a pact that could not be fetched or parsed.
type RetrievalError struct {
	Location string
	Err      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("json pact file could not be retrieved using uri '%s': %s", e.Location, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }
func (e *RetrievalError) Cause() error  { return e.Err }

// VerificationFailure reports an interaction that was rejected by the matcher
// or whose provider state failed. Err is the matcher's or hook's own error.
type VerificationFailure struct {
	Description   string
	ProviderState string
	Err           error
}

func (e *VerificationFailure) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("verification failed: %s", e.Err)
	}
	return fmt.Sprintf("verification of '%s' given '%s' failed: %s", e.Description, e.ProviderState, e.Err)
}

func (e *VerificationFailure) Unwrap() error { return e.Err }
func (e *VerificationFailure) Cause() error  { return e.Err }

// PublicationError reports a verification result that could not be delivered
// to the broker. The verification outcome itself is unaffected.
type PublicationError struct {
	Link string
	Err  error
}

func (e *PublicationError) Error() string {
	return fmt.Sprintf("publishing verification results to '%s' failed: %s", e.Link, e.Err)
}

func (e *PublicationError) Unwrap() error { return e.Err }
func (e *PublicationError) Cause() error  { return e.Err }

package messageverifier

import (
	"encoding/json"

	"github.com/form3tech-oss/pact-message-verifier/internal/app/verifier"
)

type (
	Builder            = verifier.Builder
	Config             = verifier.Config
	Verifier           = verifier.Verifier
	Filter             = verifier.Filter
	Message            = verifier.Message
	Interaction        = verifier.Interaction
	Contract           = verifier.Contract
	PactURIOptions     = verifier.PactURIOptions
	VerificationResult = verifier.VerificationResult
	SetUpFunc          = verifier.SetUpFunc
	TearDownFunc       = verifier.TearDownFunc
	Matcher            = verifier.Matcher
	MatcherFunc        = verifier.MatcherFunc
	ReportOutputter    = verifier.ReportOutputter

	ConfigurationError  = verifier.ConfigurationError
	RetrievalError      = verifier.RetrievalError
	VerificationFailure = verifier.VerificationFailure
	PublicationError    = verifier.PublicationError

	ConsoleReportOutputter = verifier.ConsoleReportOutputter
)

var (
	ErrEmptyName                      = verifier.ErrEmptyName
	ErrNameAlreadySet                 = verifier.ErrNameAlreadySet
	ErrPactURINotSet                  = verifier.ErrPactURINotSet
	ErrNoInteractions                 = verifier.ErrNoInteractions
	ErrEmptyProviderState             = verifier.ErrEmptyProviderState
	ErrProviderStateAlreadyRegistered = verifier.ErrProviderStateAlreadyRegistered
	ErrUnknownProviderState           = verifier.ErrUnknownProviderState
	ErrMissingPublishLink             = verifier.ErrMissingPublishLink
	ErrNoMatcher                      = verifier.ErrNoMatcher
)

// ProducedMessage is the response of the message API.
type ProducedMessage struct {
	Contents json.RawMessage        `json:"contents"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

package verifier

import (
	"net/http"
	"strings"
)

const defaultLogDir = "logs"

// Config holds the run level settings of a Verifier.
type Config struct {
	LogDir                     string
	ReportOutputters           []ReportOutputter
	PublishVerificationResults bool
	ProviderVersion            string
}

// Matcher decides whether a produced message satisfies an interaction.
type Matcher interface {
	Match(expected Interaction, actual Message) error
}

type MatcherFunc func(expected Interaction, actual Message) error

func (f MatcherFunc) Match(expected Interaction, actual Message) error {
	return f(expected, actual)
}

// settings is the immutable result of a successful Build.
type settings struct {
	config         Config
	providerName   string
	consumerName   string
	pactURI        string
	pactURIOptions *PactURIOptions
}

// Builder assembles a Verifier. Setters only record values; all validation
// happens in Build so a Builder can be configured in any order.
type Builder struct {
	setUp     func() error
	tearDown  func() error
	config    Config
	providers []string
	consumers []string
	pactURIs  []string
	options   *PactURIOptions
	states    []ProviderState
	matcher   Matcher
	client    *http.Client
}

// NewBuilder starts a Verifier. setUp and tearDown, when not nil, run once
// before and after all interactions of every verification run.
func NewBuilder(setUp, tearDown func() error, config Config) *Builder {
	return &Builder{
		setUp:    setUp,
		tearDown: tearDown,
		config:   config,
	}
}

func (b *Builder) MessageProvider(providerName string) *Builder {
	b.providers = append(b.providers, providerName)
	return b
}

func (b *Builder) HonoursPactWith(consumerName string) *Builder {
	b.consumers = append(b.consumers, consumerName)
	return b
}

func (b *Builder) PactURI(location string, options *PactURIOptions) *Builder {
	b.pactURIs = append(b.pactURIs, location)
	b.options = options
	return b
}

func (b *Builder) ProviderState(name string, setUp SetUpFunc, tearDown TearDownFunc) *Builder {
	b.states = append(b.states, ProviderState{Name: name, SetUp: setUp, TearDown: tearDown})
	return b
}

func (b *Builder) WithMatcher(matcher Matcher) *Builder {
	b.matcher = matcher
	return b
}

func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.client = client
	return b
}

func (b *Builder) Build() (*Verifier, error) {
	providerName, err := onceValue("provider name", b.providers)
	if err != nil {
		return nil, err
	}
	consumerName, err := onceValue("consumer name", b.consumers)
	if err != nil {
		return nil, err
	}
	pactURI, err := onceValue("pact uri", b.pactURIs)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	for _, state := range b.states {
		if err := registry.Register(state); err != nil {
			return nil, err
		}
	}

	if b.matcher == nil {
		return nil, configErrorf(ErrNoMatcher, "please supply a message matcher")
	}

	config := b.config
	if config.LogDir == "" {
		config.LogDir = defaultLogDir
	}
	if config.ReportOutputters == nil {
		config.ReportOutputters = []ReportOutputter{ConsoleReportOutputter{}}
	}

	client := b.client
	if client == nil {
		client = &http.Client{}
	}

	return &Verifier{
		settings: settings{
			config:         config,
			providerName:   providerName,
			consumerName:   consumerName,
			pactURI:        pactURI,
			pactURIOptions: b.options,
		},
		setUp:     b.setUp,
		tearDown:  b.tearDown,
		registry:  registry,
		matcher:   b.matcher,
		retriever: NewRetriever(client),
		publisher: NewPublisher(client, b.options),
		openLog:   openLogFile,
	}, nil
}

// onceValue returns the single value recorded for a set-once setting. A
// setting that was never recorded yields "".
func onceValue(setting string, values []string) (string, error) {
	switch len(values) {
	case 0:
		return "", nil
	case 1:
		if strings.TrimSpace(values[0]) == "" {
			return "", configErrorf(ErrEmptyName, "please supply a non empty %s", setting)
		}
		return values[0], nil
	default:
		return "", configErrorf(ErrNameAlreadySet,
			"%s has already been supplied, please use a new verifier to verify against a different one", setting)
	}
}

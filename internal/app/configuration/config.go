package configuration

import (
	"context"

	"github.com/form3tech-oss/pact-message-verifier/internal/app/matching"
	"github.com/form3tech-oss/pact-message-verifier/internal/app/verifier"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	PactURI             string `env:"PACT_URI"`
	AuthorizationScheme string `env:"PACT_AUTH_SCHEME,default=Bearer"`
	AuthorizationValue  string `env:"PACT_AUTH_VALUE"`
	ProviderName        string `env:"PROVIDER_NAME"`
	ConsumerName        string `env:"CONSUMER_NAME"`
	ProviderVersion     string `env:"PROVIDER_VERSION"`
	PublishResults      bool   `env:"PUBLISH_RESULTS"`
	LogDir              string `env:"LOG_DIR,default=logs"`
	FixturesFile        string `env:"FIXTURES_FILE"`
	FilterDescription   string `env:"FILTER_DESCRIPTION"`
	FilterProviderState string `env:"FILTER_PROVIDER_STATE"`
	MessageAPIPort      int    `env:"MESSAGE_API_PORT"` // Serve the message API instead of verifying when set
	TLSCAFile           string `env:"TLS_CA_FILE"`
	TLSCertFile         string `env:"TLS_CERT_FILE"`
	TLSKeyFile          string `env:"TLS_KEY_FILE"`
}

func NewFromEnv() (Config, error) {
	return newFromLookuper(envconfig.OsLookuper())
}

func newFromLookuper(lookuper envconfig.Lookuper) (Config, error) {
	ctx := context.Background()

	var config Config
	err := envconfig.ProcessWith(ctx, &config, lookuper)
	if err != nil {
		return config, errors.Wrap(err, "process env config")
	}
	return config, nil
}

func (c Config) PactURIOptions() *verifier.PactURIOptions {
	if c.AuthorizationValue == "" {
		return nil
	}
	return &verifier.PactURIOptions{
		AuthorizationScheme: c.AuthorizationScheme,
		AuthorizationValue:  c.AuthorizationValue,
	}
}

func (c Config) Filter() verifier.Filter {
	return verifier.Filter{
		Description:   c.FilterDescription,
		ProviderState: c.FilterProviderState,
	}
}

// NewVerifier builds a verifier whose provider states replay fixtures.
func NewVerifier(config Config, fixtures []Fixture) (*verifier.Verifier, error) {
	builder := verifier.NewBuilder(nil, nil, verifier.Config{
		LogDir:                     config.LogDir,
		PublishVerificationResults: config.PublishResults,
		ProviderVersion:            config.ProviderVersion,
	}).WithMatcher(matching.New())

	if config.ProviderName != "" {
		builder.MessageProvider(config.ProviderName)
	}
	if config.ConsumerName != "" {
		builder.HonoursPactWith(config.ConsumerName)
	}
	if config.PactURI != "" {
		builder.PactURI(config.PactURI, config.PactURIOptions())
	}
	for _, fixture := range fixtures {
		state := fixture.ProviderState()
		builder.ProviderState(state.Name, state.SetUp, state.TearDown)
	}

	return builder.Build()
}

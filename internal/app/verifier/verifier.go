package verifier

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const publishLinkRelation = "pb:publish-verification-results"

// Verifier verifies the messages of a single pact against the provider
// states registered with it. Interactions are verified one at a time, in pact
// order, because provider states may share fixtures.
type Verifier struct {
	settings  settings
	setUp     func() error
	tearDown  func() error
	registry  *Registry
	matcher   Matcher
	retriever *Retriever
	publisher *Publisher
	openLog   openLogFunc
}

func (v *Verifier) ProviderName() string { return v.settings.providerName }
func (v *Verifier) ConsumerName() string { return v.settings.consumerName }
func (v *Verifier) Registry() *Registry  { return v.registry }

// Verify runs every interaction accepted by filter and returns the outcome of
// the run. A non nil error is one of *ConfigurationError, *RetrievalError,
// *VerificationFailure or *PublicationError. When publication fails the
// returned result still reports the successful verification.
func (v *Verifier) Verify(ctx context.Context, filter Filter) (VerificationResult, error) {
	result := VerificationResult{ProviderApplicationVersion: v.settings.config.ProviderVersion}

	if v.settings.pactURI == "" {
		return result, configErrorf(ErrPactURINotSet, "please supply a pact uri using PactURI")
	}

	contract, err := v.retriever.Load(ctx, v.settings.pactURI, v.settings.pactURIOptions)
	if err != nil {
		return result, err
	}
	v.warnOnMismatchedParticipants(contract)

	interactions := contract.Filter(filter)
	if filter.IsSet() && len(interactions) == 0 {
		return result, configErrorf(ErrNoInteractions, "the specified %s", filter)
	}

	states, err := v.resolveStates(interactions)
	if err != nil {
		return result, err
	}

	var publishLink string
	if v.settings.config.PublishVerificationResults {
		link, ok := contract.PublishLink()
		if !ok {
			return result, configErrorf(ErrMissingPublishLink,
				"pact '%s' has no '%s' link", v.settings.pactURI, publishLinkRelation)
		}
		publishLink = link
	}

	runLog, err := newRunLog(v.openLog, v.settings.config.LogDir, v.settings.providerName)
	if err != nil {
		return result, err
	}
	defer func() {
		if err := runLog.Close(); err != nil {
			log.WithError(err).Warnf("unable to close verifier log %s", runLog.path)
		}
	}()

	report := newReporter(append(append([]ReportOutputter(nil), v.settings.config.ReportOutputters...), runLog)...)
	defer report.flush()

	report.reportInfo("Verifying a pact between %s and %s", contract.ConsumerName(), contract.ProviderName())
	runLog.WithFields(log.Fields{
		"consumer":     contract.ConsumerName(),
		"interactions": len(interactions),
	}).Info("starting verification")

	if err := v.validate(runLog, report, interactions, states); err != nil {
		runLog.WithError(err).Error("verification failed")
		return result, err
	}
	result.Success = true
	runLog.Info("verification succeeded")

	if publishLink != "" {
		if err := v.publisher.Publish(ctx, runLog, publishLink, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (v *Verifier) warnOnMismatchedParticipants(contract *Contract) {
	if v.settings.providerName != "" && contract.ProviderName() != v.settings.providerName {
		log.Warnf("pact is for provider '%s' but verifier is for '%s'", contract.ProviderName(), v.settings.providerName)
	}
	if v.settings.consumerName != "" && contract.ConsumerName() != v.settings.consumerName {
		log.Warnf("pact is from consumer '%s' but verifier honours '%s'", contract.ConsumerName(), v.settings.consumerName)
	}
}

func (v *Verifier) resolveStates(interactions []Interaction) ([]ProviderState, error) {
	states := make([]ProviderState, 0, len(interactions))
	for _, interaction := range interactions {
		state, ok := v.registry.Lookup(interaction.ProviderState)
		if !ok {
			return nil, configErrorf(ErrUnknownProviderState,
				"provider state '%s' required by '%s'", interaction.ProviderState, interaction.Description)
		}
		states = append(states, state)
	}
	return states, nil
}

func (v *Verifier) validate(logger *runLog, report *reporter, interactions []Interaction, states []ProviderState) (err error) {
	if v.setUp != nil {
		if setUpErr := v.setUp(); setUpErr != nil {
			return &VerificationFailure{Err: errors.Wrap(setUpErr, "set up failed")}
		}
	}
	if v.tearDown != nil {
		defer func() {
			if tearDownErr := v.tearDown(); tearDownErr != nil {
				logger.WithError(tearDownErr).Error("tear down failed")
				if err == nil {
					err = &VerificationFailure{Err: errors.Wrap(tearDownErr, "tear down failed")}
				}
			}
		}()
	}

	for i, interaction := range interactions {
		if err := v.verifyInteraction(logger, interaction, states[i]); err != nil {
			report.reportInteraction(interaction, err)
			return &VerificationFailure{
				Description:   interaction.Description,
				ProviderState: interaction.ProviderState,
				Err:           err,
			}
		}
		report.reportInteraction(interaction, nil)
	}
	return nil
}

// verifyInteraction produces the message for interaction and hands it to the
// matcher. The state's tear down runs whenever it is set, even if set up or
// matching failed.
func (v *Verifier) verifyInteraction(logger *runLog, interaction Interaction, state ProviderState) (err error) {
	entry := logger.WithFields(log.Fields{
		"interaction":    interaction.Description,
		"provider_state": interaction.ProviderState,
	})
	entry.Info("verifying interaction")

	if state.TearDown != nil {
		defer func() {
			if tearDownErr := state.TearDown(); tearDownErr != nil {
				entry.WithError(tearDownErr).Error("provider state tear down failed")
				if err == nil {
					err = errors.Wrap(tearDownErr, "provider state tear down failed")
				}
			}
		}()
	}

	message, err := state.SetUp()
	if err != nil {
		entry.WithError(err).Error("provider state set up failed")
		return errors.Wrap(err, "provider state set up failed")
	}

	if err := v.matcher.Match(interaction, message); err != nil {
		entry.WithError(err).Error("message does not match")
		return err
	}

	entry.Info("message matches")
	return nil
}

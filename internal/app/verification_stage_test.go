package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/form3tech-oss/pact-message-verifier/internal/app/configuration"
	"github.com/form3tech-oss/pact-message-verifier/pkg/messageverifier"
	"github.com/pact-foundation/pact-go/dsl"
	"github.com/pact-foundation/pact-go/utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/sjson"
)

const (
	orderCreatedEvent   = "an order created event"
	orderCancelledEvent = "an order cancelled event"
	anOrderExists       = "an order exists"
	anOrderWasCancelled = "an order was cancelled"
)

type orderEvent struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

type VerificationStage struct {
	t          *testing.T
	assert     *assert.Assertions
	messages   []*dsl.Message
	pactPath   string
	resultPath string
	config     messageverifier.Config
	builder    *messageverifier.Builder
	produced   map[string]orderEvent
	mu         sync.Mutex
	events     []string
	result     messageverifier.VerificationResult
	err        error
	apiClient  *messageverifier.MessageAPIClient
	apiMessage *messageverifier.ProducedMessage
	apiErr     error
}

func NewVerificationStage(t *testing.T) (*VerificationStage, *VerificationStage, *VerificationStage) {
	name := "pact-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	s := &VerificationStage{
		t:          t,
		assert:     assert.New(t),
		pactPath:   "/pacts/provider/OrderService/consumer/BillingUI/" + name,
		resultPath: "/pacts/provider/OrderService/consumer/BillingUI/" + name + "/verification-results",
		config: messageverifier.Config{
			LogDir:           filepath.Join(t.TempDir(), "logs"),
			ProviderVersion:  "1.0.0",
			ReportOutputters: []messageverifier.ReportOutputter{},
		},
		produced: map[string]orderEvent{},
	}
	return s, s, s
}

func (s *VerificationStage) and() *VerificationStage {
	return s
}

func (s *VerificationStage) record(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *VerificationStage) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func (s *VerificationStage) a_pact_with_order_created_and_cancelled_messages() *VerificationStage {
	s.messages = append(s.messages,
		(&dsl.Message{}).
			Given(anOrderExists).
			ExpectsToReceive(orderCreatedEvent).
			WithContent(map[string]interface{}{"id": 1, "status": "CREATED"}),
		(&dsl.Message{}).
			Given(anOrderWasCancelled).
			ExpectsToReceive(orderCancelledEvent).
			WithContent(map[string]interface{}{"id": 1, "status": "CANCELLED"}),
	)
	return s
}

func (s *VerificationStage) the_pact_is_published_to_the_broker() *VerificationStage {
	pact, err := json.Marshal(map[string]interface{}{
		"consumer": map[string]string{"name": "BillingUI"},
		"provider": map[string]string{"name": "OrderService"},
		"messages": s.messages,
		"_links": map[string]interface{}{
			"pb:publish-verification-results": map[string]string{
				"title": "Publish verification results",
				"href":  broker.URL + s.resultPath,
			},
		},
	})
	s.assert.NoError(err)
	broker.storePact(s.pactPath, pact)
	return s
}

func (s *VerificationStage) the_pact_is_published_without_links() *VerificationStage {
	s.the_pact_is_published_to_the_broker()
	pact, err := sjson.DeleteBytes(broker.pacts[s.pactPath], "_links")
	s.assert.NoError(err)
	broker.storePact(s.pactPath, pact)
	return s
}

func (s *VerificationStage) results_are_published_for_version_(version string) *VerificationStage {
	s.config.PublishVerificationResults = true
	s.config.ProviderVersion = version
	return s
}

func (s *VerificationStage) the_provider_produces_(state string, event orderEvent) *VerificationStage {
	s.produced[state] = event
	return s
}

func (s *VerificationStage) the_provider_produces_matching_messages() *VerificationStage {
	return s.
		the_provider_produces_(anOrderExists, orderEvent{ID: 1, Status: "CREATED", Total: 100}).
		the_provider_produces_(anOrderWasCancelled, orderEvent{ID: 1, Status: "CANCELLED"})
}

func (s *VerificationStage) a_verifier_for_the_provider() *VerificationStage {
	s.builder = messageverifier.New(
		func() error {
			s.record("set up")
			return nil
		},
		func() error {
			s.record("tear down")
			return nil
		},
		s.config,
	).
		MessageProvider("OrderService").
		HonoursPactWith("BillingUI").
		PactURI(broker.URL+s.pactPath, &messageverifier.PactURIOptions{AuthorizationScheme: "Bearer", AuthorizationValue: "token"})

	for state := range s.produced {
		state := state
		s.builder.ProviderState(state,
			func() (messageverifier.Message, error) {
				s.record("set up " + state)
				return messageverifier.Message{Contents: s.produced[state]}, nil
			},
			func() error {
				s.record("tear down " + state)
				return nil
			})
	}
	return s
}

func (s *VerificationStage) the_message_api_is_started() *VerificationStage {
	v, err := s.builder.Build()
	if !s.assert.NoError(err) {
		return s
	}

	port, err := utils.GetFreePort()
	s.assert.NoError(err)

	server, err := configuration.StartServer(port, configuration.NewMessageAPI(v.Registry(), v.ConsumerName()), configuration.Config{})
	if !s.assert.NoError(err) {
		return s
	}
	s.t.Cleanup(func() {
		server.Shutdown(context.Background())
	})

	s.apiClient = messageverifier.MessageAPI(fmt.Sprintf("http://localhost:%d", port))
	err = retry.Do(s.apiClient.IsReady,
		retry.Attempts(10),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(100*time.Millisecond),
	)
	s.assert.NoError(err, "message api readiness wait failed")
	return s
}

func (s *VerificationStage) the_pact_is_verified() *VerificationStage {
	return s.the_pact_is_verified_with_filter(messageverifier.Filter{})
}

func (s *VerificationStage) the_pact_is_verified_for_provider_state_(state string) *VerificationStage {
	return s.the_pact_is_verified_with_filter(messageverifier.Filter{ProviderState: state})
}

func (s *VerificationStage) the_pact_is_verified_with_filter(filter messageverifier.Filter) *VerificationStage {
	v, err := s.builder.Build()
	if err != nil {
		s.err = err
		return s
	}
	s.result, s.err = v.Verify(context.Background(), filter)
	return s
}

func (s *VerificationStage) a_message_is_requested_for_(description, state string) *VerificationStage {
	s.apiMessage, s.apiErr = s.apiClient.Produce(description, state)
	return s
}

func (s *VerificationStage) verification_is_successful() *VerificationStage {
	s.assert.NoError(s.err)
	s.assert.True(s.result.Success)
	return s
}

func (s *VerificationStage) verification_fails_for_(description string) *VerificationStage {
	var failure *messageverifier.VerificationFailure
	if s.assert.True(errors.As(s.err, &failure), "expected verification failure, got %v", s.err) {
		s.assert.Equal(description, failure.Description)
	}
	s.assert.False(s.result.Success)
	return s
}

func (s *VerificationStage) verification_fails_with_a_configuration_error_(sentinel error) *VerificationStage {
	var configErr *messageverifier.ConfigurationError
	s.assert.True(errors.As(s.err, &configErr), "expected configuration error, got %v", s.err)
	s.assert.ErrorIs(s.err, sentinel)
	return s
}

// the message API tears a state down after the response is written
func (s *VerificationStage) the_provider_states_ran_in_order(events ...string) *VerificationStage {
	if len(events) == 0 {
		s.assert.Empty(s.recorded())
		return s
	}
	s.assert.Eventually(func() bool {
		return len(s.recorded()) >= len(events)
	}, time.Second, 10*time.Millisecond)
	s.assert.Equal(events, s.recorded())
	return s
}

func (s *VerificationStage) no_results_were_published() *VerificationStage {
	s.assert.Empty(broker.resultsFor(s.resultPath))
	return s
}

func (s *VerificationStage) a_result_was_published_with_(version string, success bool) *VerificationStage {
	results := broker.resultsFor(s.resultPath)
	if s.assert.Len(results, 1) {
		s.assert.JSONEq(fmt.Sprintf(`{"providerApplicationVersion": %q, "success": %t}`, version, success), string(results[0]))
	}
	return s
}

func (s *VerificationStage) the_message_api_returns_(event orderEvent) *VerificationStage {
	if !s.assert.NoError(s.apiErr) {
		return s
	}
	expected, err := json.Marshal(event)
	s.assert.NoError(err)
	s.assert.JSONEq(string(expected), string(s.apiMessage.Contents))
	return s
}

func (s *VerificationStage) the_message_api_rejects_the_request() *VerificationStage {
	s.assert.Error(s.apiErr)
	return s
}

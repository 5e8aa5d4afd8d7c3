package verifier

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pact-foundation/pact-go/dsl"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var snakeCaseBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

type Pacticipant struct {
	Name string `json:"name"`
}

type Link struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

type Links struct {
	PublishVerificationResults *Link `json:"pb:publish-verification-results,omitempty"`
}

// Contract is a message pact as written by a consumer.
type Contract struct {
	Consumer *Pacticipant           `json:"consumer,omitempty"`
	Provider *Pacticipant           `json:"provider,omitempty"`
	Messages []Interaction          `json:"messages"`
	Links    *Links                 `json:"_links,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Interaction is a single expected message. Raw holds the complete message
// definition so matchers can read fields such as matchingRules.
type Interaction struct {
	Description   string                 `json:"description"`
	ProviderState string                 `json:"providerState,omitempty"`
	Contents      json.RawMessage        `json:"contents,omitempty"`
	MetaData      map[string]interface{} `json:"metaData,omitempty"`
	Raw           json.RawMessage        `json:"-"`
}

// Message is what a provider state produces for verification.
type Message struct {
	Contents interface{}            `json:"contents"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type VerificationResult struct {
	ProviderApplicationVersion string `json:"providerApplicationVersion"`
	Success                    bool   `json:"success"`
}

func (i *Interaction) UnmarshalJSON(data []byte) error {
	var definition struct {
		Description    string                 `json:"description"`
		ProviderState  string                 `json:"providerState"`
		ProviderStates []dsl.State            `json:"providerStates"`
		Contents       json.RawMessage        `json:"contents"`
		MetaData       map[string]interface{} `json:"metaData"`
		Metadata       map[string]interface{} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &definition); err != nil {
		return errors.Wrap(err, "unable to parse message definition")
	}

	i.Description = definition.Description
	i.ProviderState = definition.ProviderState
	if i.ProviderState == "" && len(definition.ProviderStates) > 0 {
		i.ProviderState = definition.ProviderStates[0].Name
	}
	i.Contents = definition.Contents
	i.MetaData = definition.MetaData
	if i.MetaData == nil {
		i.MetaData = definition.Metadata
	}
	i.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func ParseContract(data []byte) (*Contract, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, errors.New("pact is not a json object")
	}

	contract := &Contract{}
	if err := json.Unmarshal(data, contract); err != nil {
		return nil, errors.Wrap(err, "unable to parse pact")
	}
	return contract, nil
}

func (c *Contract) ConsumerName() string {
	if c.Consumer == nil {
		return ""
	}
	return c.Consumer.Name
}

func (c *Contract) ProviderName() string {
	if c.Provider == nil {
		return ""
	}
	return c.Provider.Name
}

// GeneratePactFileName returns the conventional file name of the pact,
// e.g. "billing_ui-order_service.json".
func (c *Contract) GeneratePactFileName() string {
	return toLowerSnakeCase(fmt.Sprintf("%s-%s.json", c.ConsumerName(), c.ProviderName()))
}

// PublishLink returns the broker link verification results are posted to.
func (c *Contract) PublishLink() (string, bool) {
	if c.Links == nil || c.Links.PublishVerificationResults == nil {
		return "", false
	}
	href := c.Links.PublishVerificationResults.Href
	return href, strings.TrimSpace(href) != ""
}

// Filter restricts a verification run to a subset of the pact's messages.
// Empty fields match everything.
type Filter struct {
	Description   string
	ProviderState string
}

func (f Filter) IsSet() bool {
	return f.Description != "" || f.ProviderState != ""
}

func (f Filter) String() string {
	return fmt.Sprintf("description '%s', provider state '%s'", f.Description, f.ProviderState)
}

// Filter returns the messages accepted by f, in pact order.
func (c *Contract) Filter(f Filter) []Interaction {
	var result []Interaction
	for _, message := range c.Messages {
		if f.Description != "" && message.Description != f.Description {
			continue
		}
		if f.ProviderState != "" && message.ProviderState != f.ProviderState {
			continue
		}
		result = append(result, message)
	}
	return result
}

func toLowerSnakeCase(s string) string {
	s = snakeCaseBoundary.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(strings.ReplaceAll(s, " ", "_"))
}

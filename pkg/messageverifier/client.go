package messageverifier

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pact-foundation/pact-go/types"
	"github.com/pkg/errors"
)

// MessageAPIClient talks to a running message API.
type MessageAPIClient struct {
	client http.Client
	url    string
}

func MessageAPI(url string) *MessageAPIClient {
	return &MessageAPIClient{
		client: http.Client{
			Timeout: 30 * time.Second,
		},
		url: url,
	}
}

func (m *MessageAPIClient) IsReady() error {
	res, err := m.client.Get(strings.TrimSuffix(m.url, "/") + "/ready")
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return errors.Errorf("message api not ready: %d", res.StatusCode)
	}
	return nil
}

func (m *MessageAPIClient) States() (types.ProviderStates, error) {
	res, err := m.client.Get(strings.TrimSuffix(m.url, "/") + "/states")
	if err != nil {
		return nil, err
	}

	responseBody, err := io.ReadAll(res.Body)
	defer res.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read states")
	}
	if res.StatusCode != http.StatusOK {
		return nil, errors.New(string(responseBody))
	}

	states := types.ProviderStates{}
	if err := json.Unmarshal(responseBody, &states); err != nil {
		return nil, errors.Wrap(err, "failed to parse states")
	}
	return states, nil
}

// Produce asks the provider for the message it produces in providerState.
func (m *MessageAPIClient) Produce(description, providerState string) (*ProducedMessage, error) {
	content, err := json.Marshal(map[string]interface{}{
		"description":   description,
		"providerState": providerState,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal message request")
	}

	req, err := http.NewRequest(http.MethodPost, strings.TrimSuffix(m.url, "/")+"/messages", bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}

	responseBody, err := io.ReadAll(res.Body)
	defer res.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read message")
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, errors.New(string(responseBody))
	}

	message := &ProducedMessage{}
	if err := json.Unmarshal(responseBody, message); err != nil {
		return nil, errors.Wrap(err, "failed to parse message")
	}
	return message, nil
}

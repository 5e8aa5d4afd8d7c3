package verifier

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// PactURIOptions carries the Authorization header sent to the broker.
type PactURIOptions struct {
	AuthorizationScheme string
	AuthorizationValue  string
}

func (o *PactURIOptions) apply(req *http.Request) {
	if o == nil {
		return
	}
	req.Header.Set("Authorization", strings.TrimSpace(o.AuthorizationScheme+" "+o.AuthorizationValue))
}

// Retriever loads pacts from the filesystem or over http(s).
type Retriever struct {
	client *http.Client
}

func NewRetriever(client *http.Client) *Retriever {
	if client == nil {
		client = &http.Client{}
	}
	return &Retriever{client: client}
}

func (r *Retriever) Load(ctx context.Context, location string, options *PactURIOptions) (*Contract, error) {
	var (
		data []byte
		err  error
	)
	if isWebURI(location) {
		data, err = r.get(ctx, location, options)
	} else {
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, &RetrievalError{Location: location, Err: err}
	}

	contract, err := ParseContract(data)
	if err != nil {
		return nil, &RetrievalError{Location: location, Err: err}
	}
	return contract, nil
}

func (r *Retriever) get(ctx context.Context, location string, options *PactURIOptions) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	options.apply(req)

	log.WithField("pact_uri", location).Info("fetching pact")
	res, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, errors.Errorf("unexpected status %d", res.StatusCode)
	}
	return body, nil
}

func isWebURI(uri string) bool {
	lower := strings.ToLower(uri)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

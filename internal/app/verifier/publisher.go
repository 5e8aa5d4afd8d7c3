package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Publisher posts verification results to the broker.
type Publisher struct {
	client  *http.Client
	options *PactURIOptions
}

func NewPublisher(client *http.Client, options *PactURIOptions) *Publisher {
	if client == nil {
		client = &http.Client{}
	}
	return &Publisher{client: client, options: options}
}

func (p *Publisher) Publish(ctx context.Context, logger log.FieldLogger, link string, result VerificationResult) error {
	if err := p.post(ctx, link, result); err != nil {
		logger.WithError(err).Errorf("failed to publish verification results to %s", link)
		return &PublicationError{Link: link, Err: err}
	}

	logger.WithFields(log.Fields{
		"provider_version": result.ProviderApplicationVersion,
		"success":          result.Success,
	}).Infof("published verification results to %s", link)
	return nil
}

func (p *Publisher) post(ctx context.Context, link string, result VerificationResult) error {
	content, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "failed to marshal verification result")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, link, bytes.NewReader(content))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	p.options.apply(req)

	res, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(res.Body)
		return errors.Errorf("unexpected status %d: %s", res.StatusCode, string(responseBody))
	}
	return nil
}

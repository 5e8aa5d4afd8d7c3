package verifier

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	r := require.New(t)

	var (
		body          []byte
		authorization string
		contentType   string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/pacts/provider/OrderService/consumer/BillingUI/pact-version/1/verification-results", req.URL.Path)
		authorization = req.Header.Get("Authorization")
		contentType = req.Header.Get("Content-Type")
		body, _ = io.ReadAll(req.Body)
		rw.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	publisher := NewPublisher(ts.Client(), &PactURIOptions{AuthorizationScheme: "Basic", AuthorizationValue: "dXNlcjpwYXNz"})
	err := publisher.Publish(
		context.Background(),
		log.NewEntry(log.StandardLogger()),
		ts.URL+"/pacts/provider/OrderService/consumer/BillingUI/pact-version/1/verification-results",
		VerificationResult{ProviderApplicationVersion: "1.2.3", Success: true},
	)
	r.NoError(err)

	r.JSONEq(`{"providerApplicationVersion": "1.2.3", "success": true}`, string(body))
	r.Equal("Basic dXNlcjpwYXNz", authorization)
	r.Equal("application/json", contentType)
}

func TestPublisher_PublishErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
		rw.Write([]byte("broker unavailable"))
	}))
	defer ts.Close()

	for _, tt := range []struct {
		name string
		link string
	}{
		{name: "server error", link: ts.URL + "/results"},
		{name: "unreachable", link: "http://127.0.0.1:1/results"},
		{name: "invalid link", link: "://results"},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)

			err := NewPublisher(ts.Client(), nil).Publish(
				context.Background(),
				log.NewEntry(log.StandardLogger()),
				tt.link,
				VerificationResult{ProviderApplicationVersion: "1.2.3", Success: true},
			)

			var publicationErr *PublicationError
			r.True(errors.As(err, &publicationErr), "expected publication error, got %v", err)
			r.Equal(tt.link, publicationErr.Link)
		})
	}
}

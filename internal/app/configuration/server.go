package configuration

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// StartServer serves handler on port in the background, over TLS when a
// certificate is configured and with client certificate verification when a
// CA is configured as well.
func StartServer(port int, handler http.Handler, config Config) (*http.Server, error) {
	s, err := newServer(port, handler, config)
	if err != nil {
		return nil, err
	}

	go func() {
		var err error
		if config.TLSCertFile != "" && config.TLSKeyFile != "" {
			err = s.ListenAndServeTLS(config.TLSCertFile, config.TLSKeyFile)
		} else {
			err = s.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Error(err)
		}
	}()

	return s, nil
}

func newServer(port int, handler http.Handler, config Config) (*http.Server, error) {
	s := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	if config.TLSCAFile != "" {
		if config.TLSCertFile == "" || config.TLSKeyFile == "" {
			return nil, errors.New("cannot run in mTLS mode without TLS cert and key")
		}

		caCertFile, err := os.ReadFile(config.TLSCAFile)
		if err != nil {
			return nil, errors.Wrap(err, "error reading CA certificate")
		}
		certPool := x509.NewCertPool()
		if !certPool.AppendCertsFromPEM(caCertFile) {
			return nil, errors.Errorf("no certificates found in %s", config.TLSCAFile)
		}
		s.TLSConfig = &tls.Config{
			ClientAuth: tls.RequireAndVerifyClientCert,
			ClientCAs:  certPool,
			MinVersion: tls.VersionTLS12,
		}
	}

	return s, nil
}

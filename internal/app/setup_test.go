package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
)

var broker *fakeBroker

// fakeBroker serves pacts and collects the verification results posted to it.
type fakeBroker struct {
	*httptest.Server
	mu      sync.Mutex
	pacts   map[string][]byte
	results map[string][][]byte
}

func newFakeBroker() *fakeBroker {
	b := &fakeBroker{
		pacts:   map[string][]byte{},
		results: map[string][][]byte{},
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.handle))
	return b
}

func (b *fakeBroker) handle(rw http.ResponseWriter, req *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch req.Method {
	case http.MethodGet:
		pact, ok := b.pacts[req.URL.Path]
		if !ok {
			rw.WriteHeader(http.StatusNotFound)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		rw.Write(pact)
	case http.MethodPost:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			rw.WriteHeader(http.StatusBadRequest)
			return
		}
		b.results[req.URL.Path] = append(b.results[req.URL.Path], body)
		rw.WriteHeader(http.StatusCreated)
	default:
		rw.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (b *fakeBroker) storePact(path string, pact []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pacts[path] = pact
}

func (b *fakeBroker) resultsFor(path string) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.results[path]
}

func TestMain(m *testing.M) {
	log.SetLevel(log.WarnLevel)

	broker = newFakeBroker()
	code := m.Run()
	broker.Close()

	os.Exit(code)
}

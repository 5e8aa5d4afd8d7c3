package configuration

import (
	"encoding/json"
	"os"

	"github.com/form3tech-oss/pact-message-verifier/internal/app/verifier"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Fixture is a provider state whose message is read from a file rather than
// produced by provider code.
type Fixture struct {
	Name     string                 `json:"name"`
	Contents json.RawMessage        `json:"contents"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type fixtureFile struct {
	States []Fixture `json:"states"`
}

func LoadFixtures(path string) ([]Fixture, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read fixtures %s", path)
	}

	file := fixtureFile{}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "unable to parse fixtures %s", path)
	}

	log.Infof("loaded %d provider state fixtures from %s", len(file.States), path)
	return file.States, nil
}

func (f Fixture) ProviderState() verifier.ProviderState {
	return verifier.ProviderState{
		Name: f.Name,
		SetUp: func() (verifier.Message, error) {
			log.WithField("provider_state", f.Name).Debug("replaying fixture")
			return verifier.Message{Contents: f.Contents, Metadata: f.Metadata}, nil
		},
	}
}

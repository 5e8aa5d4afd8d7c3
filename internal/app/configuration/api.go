package configuration

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/form3tech-oss/pact-message-verifier/internal/app/httpresponse"
	"github.com/form3tech-oss/pact-message-verifier/internal/app/verifier"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pact-foundation/pact-go/types"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// messageAPI lets out of process verifiers ask for the message a provider
// state produces. Messages are produced one at a time as provider states may
// share fixtures.
type messageAPI struct {
	mu       sync.Mutex
	registry *verifier.Registry
	consumer string
}

func NewMessageAPI(registry *verifier.Registry, consumer string) *echo.Echo {
	api := &messageAPI{registry: registry, consumer: consumer}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/ready", api.readinessHandler)
	e.GET("/states", api.statesHandler)
	e.POST("/messages", api.messagesHandler)

	return e
}

func (a *messageAPI) readinessHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (a *messageAPI) statesHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, types.ProviderStates{a.consumer: a.registry.Names()})
}

func (a *messageAPI) messagesHandler(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(
			http.StatusBadRequest,
			httpresponse.Errorf("unable to read message request. %s", err.Error()),
		)
	}
	if !gjson.ValidBytes(body) {
		return c.JSON(http.StatusBadRequest, httpresponse.Error("unable to parse message request"))
	}

	description := gjson.GetBytes(body, "description").String()
	providerState := gjson.GetBytes(body, "providerState").String()
	if providerState == "" {
		providerState = gjson.GetBytes(body, "providerStates.0.name").String()
	}

	state, ok := a.registry.Lookup(providerState)
	if !ok {
		return c.JSON(
			http.StatusBadRequest,
			httpresponse.Errorf("unable to find provider state '%s' for '%s'", providerState, description),
		)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	logger := log.WithFields(log.Fields{"interaction": description, "provider_state": providerState})
	logger.Info("producing message")

	if state.TearDown != nil {
		defer func() {
			if err := state.TearDown(); err != nil {
				logger.WithError(err).Error("provider state tear down failed")
			}
		}()
	}

	message, err := state.SetUp()
	if err != nil {
		return c.JSON(
			http.StatusInternalServerError,
			httpresponse.Errorf("provider state '%s' set up failed. %s", providerState, err.Error()),
		)
	}

	response, err := messageResponse(message)
	if err != nil {
		return c.JSON(
			http.StatusInternalServerError,
			httpresponse.Errorf("unable to encode message. %s", err.Error()),
		)
	}
	return c.JSONBlob(http.StatusOK, response)
}

func messageResponse(message verifier.Message) ([]byte, error) {
	contents, err := json.Marshal(message.Contents)
	if err != nil {
		return nil, err
	}

	response, err := sjson.SetRawBytes([]byte(`{}`), "contents", contents)
	if err != nil {
		return nil, err
	}
	if len(message.Metadata) > 0 {
		response, err = sjson.SetBytes(response, "metadata", message.Metadata)
		if err != nil {
			return nil, err
		}
	}
	return response, nil
}

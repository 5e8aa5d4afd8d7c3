package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/form3tech-oss/pact-message-verifier/internal/app/configuration"
	log "github.com/sirupsen/logrus"
)

func main() {
	config, err := configuration.NewFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	fixtures, err := configuration.LoadFixtures(config.FixturesFile)
	if err != nil {
		log.Fatal(err)
	}

	v, err := configuration.NewVerifier(config, fixtures)
	if err != nil {
		log.Fatal(err)
	}

	if config.MessageAPIPort != 0 {
		log.Infof("serving message api on port %d", config.MessageAPIPort)
		server, err := configuration.StartServer(config.MessageAPIPort, configuration.NewMessageAPI(v.Registry(), config.ConsumerName), config)
		if err != nil {
			log.Fatal(err)
		}

		c := make(chan os.Signal, 2)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		if err := server.Shutdown(context.Background()); err != nil {
			log.Fatal(err)
		}
		return
	}

	log.Infof("verifying %s", config.PactURI)
	result, err := v.Verify(context.Background(), config.Filter())
	if err != nil {
		log.WithField("success", result.Success).Fatal(err)
	}
	log.Info("verification succeeded")
}

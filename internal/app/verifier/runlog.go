package verifier

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const runLogFileFormat = "%s_verifier.log"

type openLogFunc func(path string) (io.WriteCloser, error)

func openLogFile(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// runLog is the log of a single verification run. It is owned by the run
// that opened it and must be closed before the run returns.
type runLog struct {
	*log.Entry
	path   string
	sink   io.WriteCloser
	once   sync.Once
	closed error
}

func newRunLog(open openLogFunc, dir, providerName string) (*runLog, error) {
	path := filepath.Join(dir, fmt.Sprintf(runLogFileFormat, toLowerSnakeCase(providerName)))
	sink, err := open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open verifier log %s", path)
	}

	logger := log.New()
	logger.SetOutput(sink)
	logger.SetFormatter(&log.TextFormatter{DisableColors: true, FullTimestamp: true})

	return &runLog{
		Entry: logger.WithField("provider", providerName),
		path:  path,
		sink:  sink,
	}, nil
}

func (l *runLog) Close() error {
	l.once.Do(func() {
		l.closed = l.sink.Close()
	})
	return l.closed
}

// Write makes the run log usable as a report outputter.
func (l *runLog) Write(report string) {
	if _, err := io.WriteString(l.sink, report); err != nil {
		log.WithError(err).Warnf("unable to write report to %s", l.path)
	}
}

package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Interface describes the minimal logging interface the fetch pipeline and
// cache rely on.
type Interface interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

var (
	globalLogger *zerologAdapter
	once         sync.Once
)

// Logger returns a lazily initialized zerolog-backed logger implementing Interface.
// Output goes to stderr so reports on stdout stay clean.
func Logger() Interface {
	return adapter()
}

func adapter() *zerologAdapter {
	once.Do(func() {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		base := zerolog.New(out).With().Timestamp().Logger().Level(zerolog.InfoLevel)
		globalLogger = &zerologAdapter{log: base}
	})
	return globalLogger
}

// SetLevel parses level ("debug", "info", "warn", ...) and applies it to the
// global logger.
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	a := adapter()
	a.log = a.log.Level(lvl)
	return nil
}

// New returns a logger writing plain JSON lines to w. Tests use it with a
// bytes.Buffer.
func New(w io.Writer) Interface {
	return &zerologAdapter{log: zerolog.New(w)}
}

// Nop returns a logger that discards everything.
func Nop() Interface {
	return &zerologAdapter{log: zerolog.Nop()}
}

type zerologAdapter struct {
	log zerolog.Logger
}

func (l *zerologAdapter) Infof(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

func (l *zerologAdapter) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

func (l *zerologAdapter) Debugf(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l *zerologAdapter) Warnf(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

package prefs

import (
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// WithLogger routes failure and diagnostic logging to logger. A nil logger
// discards all output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(cfg *prefsConfig) {
		if logger == nil {
			cfg.logger = discardLogger()
			return
		}
		cfg.logger = logger
	}
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func (p *Prefs[S]) logger() logrus.FieldLogger {
	return p.cfg.logger.WithField("location", p.cfg.target.Location())
}

// logFailure reports a caught persistence failure with its diagnostic detail.
func (p *Prefs[S]) logFailure(message string, err error) {
	entry := p.logger().WithError(err)
	var perr *PersistError
	if errors.As(err, &perr) {
		entry = entry.WithField("op", string(perr.Op))
		if perr.Property != "" {
			entry = entry.WithField("property", perr.Property)
		}
	}
	if stack := stackOf(err); stack != "" {
		entry = entry.WithField("stack", stack)
	}
	entry.Error(message)
}

func (p *Prefs[S]) logEvaluation(engine, expr string, duration time.Duration, err error) {
	entry := p.cfg.logger.WithFields(logrus.Fields{
		"engine":   engine,
		"expr":     expr,
		"duration": duration,
	})
	if err != nil {
		entry.WithError(err).Debug("prefs: evaluation failed")
		return
	}
	entry.Debug("prefs: evaluation")
}

package worker

import (
	"github.com/snielsen221b/evotext/pkg/logger"
)

// Option applies a configuration option to the TrialWorker.
type Option func(*TrialWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *TrialWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *TrialWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

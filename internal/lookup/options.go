package lookup

import (
	"github.com/vvangelov/brregservice/internal/events"
	"github.com/vvangelov/brregservice/internal/lock"
	"github.com/vvangelov/brregservice/internal/metrics"
)

type OptionFunc func(opt *Options)

type Options struct {
	locker    lock.Locker
	publisher events.Publisher
	metrics   *metrics.Metrics
}

// WithLocker replaces the in-process keyed mutex, e.g. with a Redis lock shared by
// all replicas.
func WithLocker(l lock.Locker) OptionFunc {
	return func(opt *Options) {
		opt.locker = l
	}
}

func WithPublisher(p events.Publisher) OptionFunc {
	return func(opt *Options) {
		opt.publisher = p
	}
}

func WithMetrics(m *metrics.Metrics) OptionFunc {
	return func(opt *Options) {
		opt.metrics = m
	}
}

func defaultOptions() *Options {
	return &Options{
		locker:    lock.NewKeyedMutex(),
		publisher: events.Noop{},
	}
}

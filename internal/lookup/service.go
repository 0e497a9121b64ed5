// Package lookup fetches an organization from the registry and caches it locally.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vvangelov/brregservice/internal/events"
	"github.com/vvangelov/brregservice/internal/lock"
	"github.com/vvangelov/brregservice/internal/logging"
	"github.com/vvangelov/brregservice/internal/metrics"
	"github.com/vvangelov/brregservice/internal/registry"
	"github.com/vvangelov/brregservice/internal/storage"
)

// Registry resolves an organization number against the external registry.
type Registry interface {
	Organization(ctx context.Context, number string) (storage.Organization, bool, error)
}

type Service struct {
	registry  Registry
	storage   storage.Storage
	locker    lock.Locker
	publisher events.Publisher
	metrics   *metrics.Metrics
}

func New(reg Registry, stg storage.Storage, opts ...OptionFunc) *Service {
	opt := defaultOptions()
	for _, f := range opts {
		f(opt)
	}
	return &Service{
		registry:  reg,
		storage:   stg,
		locker:    opt.locker,
		publisher: opt.publisher,
		metrics:   opt.metrics,
	}
}

// Lookup fetches number from the registry and upserts the result. The record is built
// from the registry answer only; a stored row just decides between insert and update.
//
// On ErrPersistence the normalized record is returned together with the error.
func (s *Service) Lookup(ctx context.Context, number string) (*storage.Organization, error) {
	ts := time.Now()
	org, found, err := s.registry.Organization(ctx, number)
	s.metrics.ObserveRegistry(time.Since(ts))
	if err != nil {
		logging.Error(ctx, err, logging.Data{"number": number}, "registry lookup failed")
		if errors.Is(err, registry.ErrMalformedResponse) {
			s.metrics.RecordLookup(metrics.OutcomeMalformed)
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		s.metrics.RecordLookup(metrics.OutcomeTransport)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if !found {
		logging.Info(ctx, logging.Data{"number": number}, "organization not found in registry")
		s.metrics.RecordLookup(metrics.OutcomeNotFound)
		return nil, ErrNotFound
	}

	if err := s.store(ctx, org); err != nil {
		logging.Error(ctx, err, logging.Data{"number": org.Number}, "failed to store organization")
		s.metrics.RecordLookup(metrics.OutcomePersistence)
		return &org, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.metrics.RecordLookup(metrics.OutcomeSuccess)

	if err := s.publisher.OrganizationUpserted(ctx, org); err != nil {
		logging.Warn(ctx, err, logging.Data{"number": org.Number}, "failed to publish upsert event")
		s.metrics.RecordEventFailure()
	}
	logging.Info(ctx, logging.Data{"number": org.Number, "lookup_time": time.Since(ts)}, "lookup stats")
	return &org, nil
}

func (s *Service) store(ctx context.Context, org storage.Organization) error {
	unlock, err := s.locker.Lock(ctx, org.Number)
	if err != nil {
		return fmt.Errorf("lock %s: %w", org.Number, err)
	}
	defer unlock()
	return s.storage.Upsert(ctx, org)
}

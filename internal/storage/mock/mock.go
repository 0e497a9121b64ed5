package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/vvangelov/brregservice/internal/storage"
)

type StorageMock struct {
	Results   *storage.Data
	Err       error
	UpsertErr error

	mu               sync.Mutex
	IsCalled         bool
	CalledWithNumber string
	Upserted         []storage.Organization
}

func (s *StorageMock) Organization(ctx context.Context, number string) (*storage.Data, error) {
	if s.Results == nil && s.Err == nil {
		return nil, errors.New("mock not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.IsCalled = true
	s.CalledWithNumber = number
	return s.Results, s.Err
}

func (s *StorageMock) Upsert(ctx context.Context, org storage.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.IsCalled = true
	s.CalledWithNumber = org.Number
	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	s.Upserted = append(s.Upserted, org)
	return nil
}

package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/vvangelov/brregservice/internal/storage"
)

type LookupMock struct {
	Result *storage.Organization
	Err    error

	mu               sync.Mutex
	IsCalled         bool
	CalledWithNumber string
}

func (l *LookupMock) Lookup(ctx context.Context, number string) (*storage.Organization, error) {
	if l.Result == nil && l.Err == nil {
		return nil, errors.New("mock not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.IsCalled = true
	l.CalledWithNumber = number
	return l.Result, l.Err
}

// RegistryMock answers Organization with fixed values.
type RegistryMock struct {
	Result storage.Organization
	Found  bool
	Err    error

	mu    sync.Mutex
	Calls int
}

func (r *RegistryMock) Organization(ctx context.Context, number string) (storage.Organization, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	return r.Result, r.Found, r.Err
}

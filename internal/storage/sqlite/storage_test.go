package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvangelov/brregservice/internal/storage"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "brreg.db")
	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestStorage_OrganizationNotFound(t *testing.T) {
	s := newStorage(t)
	_, err := s.Organization(context.Background(), "987654321")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestStorage_UpsertLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	first := storage.Organization{Number: "987654321", Name: "Acme AS", Address: "Storgata 1   ", PostalCode: "0150"}
	second := storage.Organization{Number: "987654321", Name: "Acme Holding AS", Address: "Karl Johans gate 2   ", PostalCode: "0154"}
	require.NoError(t, s.Upsert(ctx, first))
	inserted, err := s.Organization(ctx, first.Number)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, second))

	n, err := s.Count(ctx, "987654321")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Organization(ctx, "987654321")
	require.NoError(t, err)
	assert.Equal(t, second, got.Organization())
	assert.Equal(t, inserted.ID.Int, got.ID.Int, "update must keep the row id")
}

func TestStorage_UpsertKeepsOtherNumbers(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	for i := 0; i < 3; i++ {
		org := storage.Organization{Number: fmt.Sprintf("98765432%d", i), Name: fmt.Sprintf("Org %d", i)}
		require.NoError(t, s.Upsert(ctx, org))
	}
	for i := 0; i < 3; i++ {
		got, err := s.Organization(ctx, fmt.Sprintf("98765432%d", i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("Org %d", i), got.Name.String)
	}
}

func TestStorage_ConcurrentUpsertSameNumber(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Upsert(ctx, storage.Organization{Number: "911111111", Name: fmt.Sprintf("Writer %d", i)})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	n, err := s.Count(ctx, "911111111")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

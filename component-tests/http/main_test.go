package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/vvangelov/brregservice/client/v1"
	"github.com/vvangelov/brregservice/internal/handler"
	"github.com/vvangelov/brregservice/internal/lookup"
	"github.com/vvangelov/brregservice/internal/registry"
	"github.com/vvangelov/brregservice/internal/storage"
	"github.com/vvangelov/brregservice/internal/storage/sqlite"
)

type fakeRegistry struct {
	mu     sync.Mutex
	bodies map[string]string
	status map[string]int
	hits   int32
}

func (f *fakeRegistry) set(number string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[number] = body
	f.status[number] = status
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.hits, 1)
	number := filepath.Base(r.URL.Path)
	number = number[:len(number)-len(filepath.Ext(number))]

	f.mu.Lock()
	body, ok := f.bodies[number]
	status := f.status[number]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"status":400,"feilmelding":"Ugyldig organisasjonsnummer"}`)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

type env struct {
	registry *fakeRegistry
	store    *sqlite.Storage
	client   v1.OrganizationService
}

func setup(t *testing.T) *env {
	t.Helper()
	fake := &fakeRegistry{bodies: map[string]string{}, status: map[string]int{}}
	fake.set("987654321", http.StatusOK, `{
		"organisasjonsnummer": "987654321",
		"navn": "Acme AS",
		"forretningsadresse": {"adresse": "Storgata 1", "postnummer": "0150"}
	}`)
	brreg := httptest.NewServer(fake)
	t.Cleanup(brreg.Close)

	cfg := sqlite.DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "brreg.db")
	store, err := sqlite.New(cfg)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	svc := lookup.New(registry.New(brreg.URL), store)
	r := mux.NewRouter()
	handler.New(svc, store).Register(r)
	api := httptest.NewServer(r)
	t.Cleanup(api.Close)

	client, err := v1.New(api.URL)
	require.NoError(t, err)
	return &env{registry: fake, store: store, client: client}
}

func TestLookupStoresOrganization(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	res, err := e.client.LookupOrganization(ctx, "987654321")
	require.NoError(t, err)
	assert.Nil(t, res.Errors)
	assert.Equal(t, &storage.Organization{
		Number:     "987654321",
		Name:       "Acme AS",
		Address:    "Storgata 1   ",
		PostalCode: "0150",
	}, res.Data)

	cached, err := e.client.RetrieveOrganization(ctx, "987654321")
	require.NoError(t, err)
	assert.Equal(t, "Acme AS", cached.Name)
	assert.Equal(t, "0150", cached.Postnummer)

	n, err := e.store.Count(ctx, "987654321")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLookupUnknownOrganization(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	res, err := e.client.LookupOrganization(ctx, "000000000")
	assert.ErrorIs(t, err, v1.ErrNotFound)
	require.NotNil(t, res)
	assert.Nil(t, res.Data)
	require.NotNil(t, res.Errors)
	assert.Equal(t, handler.DefaultMessages().OrganizationMissing, *res.Errors)

	n, err := e.store.Count(ctx, "000000000")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLookupLastWriteWins(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.client.LookupOrganization(ctx, "987654321")
	require.NoError(t, err)

	e.registry.set("987654321", http.StatusOK, `{
		"organisasjonsnummer": "987654321",
		"navn": "Acme Holding AS",
		"forretningsadresse": {"adresse": "Main St", "kommune": "Oslo", "land": "Norway", "postnummer": "0151"}
	}`)
	res, err := e.client.LookupOrganization(ctx, "987654321")
	require.NoError(t, err)
	assert.Equal(t, "Main St  Oslo Norway", res.Data.Address)

	cached, err := e.client.RetrieveOrganization(ctx, "987654321")
	require.NoError(t, err)
	assert.Equal(t, &handler.RetrieveResponse{
		Number:     "987654321",
		Name:       "Acme Holding AS",
		Address:    "Main St  Oslo Norway",
		Postnummer: "0151",
	}, cached)

	n, err := e.store.Count(ctx, "987654321")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLookupMalformedRegistryResponse(t *testing.T) {
	e := setup(t)
	e.registry.set("123456789", http.StatusOK, `<html>maintenance</html>`)

	res, err := e.client.LookupOrganization(context.Background(), "123456789")
	assert.ErrorIs(t, err, v1.ErrUnexpectedStatus)
	require.NotNil(t, res)
	assert.Nil(t, res.Data)
	require.NotNil(t, res.Errors)
	assert.Equal(t, handler.DefaultMessages().UnexpectedResponse, *res.Errors)
}

func TestLookupInvalidNumberSkipsRegistry(t *testing.T) {
	e := setup(t)

	_, err := e.client.LookupOrganization(context.Background(), "12345")
	assert.ErrorIs(t, err, v1.ErrUnexpectedStatus)
	assert.Zero(t, atomic.LoadInt32(&e.registry.hits))
}

func TestConcurrentLookupsKeepOneRow(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.client.LookupOrganization(ctx, "987654321")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := e.store.Count(ctx, "987654321")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTriggerDeliversLatestLookup(t *testing.T) {
	e := setup(t)

	results := make(chan v1.Result, 4)
	tr := v1.NewTrigger(e.client, 0, func(r v1.Result) { results <- r })
	defer tr.Stop()

	for _, v := range []string{"9", "98", "9876", "98765432", "987654321"} {
		tr.Input(v)
	}
	res := <-results
	require.NoError(t, res.Err)
	assert.Equal(t, "987654321", res.Number)
	assert.Equal(t, "Acme AS", res.Response.Data.Name)
}

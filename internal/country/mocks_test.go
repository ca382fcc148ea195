package country

import (
	"context"
	"sync"
	"time"

	"countryfx/internal/adapters"
	"countryfx/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockCountrySource struct{ mock.Mock }

func (m *MockCountrySource) FetchCountries(ctx context.Context) ([]domain.RawCountry, error) {
	args := m.Called(ctx)
	countries, _ := args.Get(0).([]domain.RawCountry)
	return countries, args.Error(1)
}

type MockRateSource struct{ mock.Mock }

func (m *MockRateSource) FetchExchangeRates(ctx context.Context, base string) (domain.RateTable, error) {
	args := m.Called(ctx, base)
	rates, _ := args.Get(0).(domain.RateTable)
	return rates, args.Error(1)
}

type MockRefreshTx struct{ mock.Mock }

func (m *MockRefreshTx) UpsertCountries(ctx context.Context, countries []domain.Country) error {
	return m.Called(ctx, countries).Error(0)
}

func (m *MockRefreshTx) UpdateMetadata(ctx context.Context, total int, at time.Time) error {
	return m.Called(ctx, total, at).Error(0)
}

func (m *MockRefreshTx) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockRefreshTx) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

type MockSummaryGenerator struct{ mock.Mock }

func (m *MockSummaryGenerator) Generate(ctx context.Context, report domain.SummaryReport) error {
	return m.Called(ctx, report).Error(0)
}

// memStore is an in-memory CountryStore whose transactions only become
// visible on commit.
type memStore struct {
	mu        sync.Mutex
	countries map[string]domain.Country
	meta      domain.RefreshMetadata

	// failOnUpsert makes the n-th UpsertCountries call (1-based) fail.
	failOnUpsert int
	upserts      int
	beginErr     error
	rolledBack   bool
	committed    bool
}

func newMemStore() *memStore {
	return &memStore{countries: map[string]domain.Country{}}
}

func (s *memStore) BeginRefresh(ctx context.Context) (adapters.RefreshTx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &memTx{store: s, staged: map[string]domain.Country{}}, nil
}

func (s *memStore) EnsureMetadata(ctx context.Context) error { return nil }

func (s *memStore) GetMetadata(ctx context.Context) (domain.RefreshMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta, nil
}

func (s *memStore) TopByGDP(ctx context.Context, limit int) ([]domain.CountryGDP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CountryGDP, 0, limit)
	for _, c := range s.countries {
		if c.EstimatedGDP.Valid && len(out) < limit {
			out = append(out, domain.CountryGDP{Name: c.Name, EstimatedGDP: c.EstimatedGDP})
		}
	}
	return out, nil
}

func (s *memStore) snapshot() (map[string]domain.Country, domain.RefreshMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.Country, len(s.countries))
	for k, v := range s.countries {
		out[k] = v
	}
	return out, s.meta
}

type memTx struct {
	store  *memStore
	staged map[string]domain.Country
	meta   *domain.RefreshMetadata
}

func (tx *memTx) UpsertCountries(ctx context.Context, countries []domain.Country) error {
	tx.store.upserts++
	if tx.store.failOnUpsert > 0 && tx.store.upserts == tx.store.failOnUpsert {
		return errUpsert
	}
	for _, c := range countries {
		tx.staged[c.Name] = c
	}
	return nil
}

func (tx *memTx) UpdateMetadata(ctx context.Context, total int, at time.Time) error {
	tx.meta = &domain.RefreshMetadata{TotalCountries: total, LastRefreshedAt: &at}
	return nil
}

func (tx *memTx) Commit(ctx context.Context) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	for k, v := range tx.staged {
		tx.store.countries[k] = v
	}
	if tx.meta != nil {
		tx.store.meta = *tx.meta
	}
	tx.store.committed = true
	return nil
}

func (tx *memTx) Rollback(ctx context.Context) error {
	tx.store.rolledBack = true
	return nil
}

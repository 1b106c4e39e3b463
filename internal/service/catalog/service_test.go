package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agah-solutions/forge/internal/cache"
	"github.com/agah-solutions/forge/internal/config"
	"github.com/agah-solutions/forge/internal/entity"
	"github.com/agah-solutions/forge/internal/pricing"
	repo "github.com/agah-solutions/forge/internal/repository/catalog"
	"github.com/agah-solutions/forge/pkg/errorbank"
)

type fakeRepo struct {
	services  []*entity.ServiceType
	listCalls int
}

func (f *fakeRepo) ListActive(context.Context) ([]*entity.ServiceType, error) {
	f.listCalls++
	return f.services, nil
}

func (f *fakeRepo) GetBySlug(_ context.Context, slug string) (*entity.ServiceType, error) {
	for _, svc := range f.services {
		if svc.Slug == slug {
			return svc, nil
		}
	}
	return nil, repo.ErrNotFound
}

// memStore is a map-backed cache.Store for tests.
type memStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemStore() *memStore { return &memStore{entries: make(map[string][]byte)} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.entries[key]; ok {
		return v, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func newTestService() (*Service, *fakeRepo) {
	repository := &fakeRepo{services: []*entity.ServiceType{
		{ID: 1, Slug: "plasma_cutting", Name: "Plasma Cutting", Family: pricing.FamilyPlasmaCutting, Active: true},
		{ID: 2, Slug: "laser_cutting", Name: "Laser Cutting", Family: pricing.FamilyLaserCutting, Active: true},
	}}
	svc := NewService(Params{
		Repository: repository,
		Cache:      newMemStore(),
		Config:     config.Config{Cache: config.Cache{DefaultTTL: time.Minute}},
		Logger:     zap.NewNop(),
	})
	return svc, repository
}

func TestListActiveCaches(t *testing.T) {
	svc, repository := newTestService()

	first, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Equal(t, 1, repository.listCalls, "second read must come from cache")
}

func TestGetBySlug(t *testing.T) {
	svc, _ := newTestService()

	service, err := svc.GetBySlug(context.Background(), "laser_cutting")
	require.NoError(t, err)
	assert.Equal(t, pricing.FamilyLaserCutting, service.Family)

	_, err = svc.GetBySlug(context.Background(), "embroidery")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}

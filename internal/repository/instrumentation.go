package repository

import (
	"context"
	"time"

	"github.com/flowgrid/flowgrid-backend/internal/models"
	"github.com/flowgrid/flowgrid-backend/internal/pkg/metrics"
)

// InstrumentedStore decorates a Store with Prometheus metrics. The hot path
// is ResolveOrProvision: its rate and error ratio are the gate's health.
type InstrumentedStore struct {
	Store
}

// Instrument wraps the given store with query timing and resolution counters.
func Instrument(s Store) *InstrumentedStore {
	return &InstrumentedStore{Store: s}
}

func (s *InstrumentedStore) ResolveOrProvision(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := instrumentQuery("resolve_or_provision", func() error {
		var err error
		user, err = s.Store.ResolveOrProvision(ctx, email)
		return err
	})
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.IdentityResolutionsTotal.WithLabelValues(result).Inc()
	return user, err
}

func (s *InstrumentedStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := instrumentQuery("get_user_by_email", func() error {
		var err error
		user, err = s.Store.GetUserByEmail(ctx, email)
		return err
	})
	return user, err
}

func (s *InstrumentedStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	var keys []*models.APIKey
	err := instrumentQuery("list_api_keys", func() error {
		var err error
		keys, err = s.Store.ListAPIKeys(ctx)
		return err
	})
	return keys, err
}

// instrumentQuery wraps a database query with timing metrics.
func instrumentQuery(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.DBQueryDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	return err
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/line-quality/internal/models"
	"github.com/yourusername/line-quality/internal/quality"
	"github.com/yourusername/line-quality/internal/repository"
	"github.com/yourusername/line-quality/internal/resolver"
)

func newQualityService(t *testing.T, store *repository.MemoryStore) *QualityService {
	t.Helper()
	agg, err := quality.NewAggregator(store.Repositories(), nil)
	require.NoError(t, err)
	res, err := resolver.New(store, nil)
	require.NoError(t, err)
	svc, err := NewQualityService(agg, res)
	require.NoError(t, err)
	return svc
}

func TestQualityServiceQuality(t *testing.T) {
	store := repository.NewMemoryStore(history(3), nil)
	svc := newQualityService(t, store)

	window := models.TimeWindow{Start: firstDay.AddDate(0, 0, 1), End: firstDay.AddDate(0, 0, 2)}
	m, err := svc.Quality(context.Background(), quality.Request{Window: window})
	require.NoError(t, err)
	assert.Equal(t, 4, m.TotalCount)
	assert.Equal(t, 3, m.GoodCount)
	assert.Equal(t, 1, m.BadCount)

	_, err = svc.Quality(context.Background(), quality.Request{Window: models.TimeWindow{Start: window.End, End: window.Start}})
	assert.True(t, errors.Is(err, models.ErrInvalidTimeWindow))
}

func TestQualityServiceUniqueTests(t *testing.T) {
	svc := newQualityService(t, repository.NewMemoryStore(history(3), nil))
	window := models.TimeWindow{Start: firstDay, End: firstDay.AddDate(0, 0, 3)}

	rows, err := svc.UniqueTests(context.Background(), resolver.Query{
		Filter: models.FilterResultCode,
		Value:  "0",
		Window: window,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SN-5", rows[0].SerialNumber)

	_, err = svc.UniqueTests(context.Background(), resolver.Query{Filter: models.FilterUnknown, Value: "x", Window: window})
	assert.True(t, errors.Is(err, models.ErrInvalidFilterColumn))
}

func TestNewQualityServiceRequiresComponents(t *testing.T) {
	_, err := NewQualityService(nil, nil)
	assert.Error(t, err)
}

package series

import (
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/line-quality/internal/metrics"
	"github.com/yourusername/line-quality/internal/models"
)

const dailyKey = "daily"

// seriesCache holds the last built series for a fixed TTL
type seriesCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

func newSeriesCache(ttl time.Duration) *seriesCache {
	return &seriesCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// get returns a private copy of the cached series
func (c *seriesCache) get() ([]models.DefectRatePoint, bool) {
	if v, found := c.cache.Get(dailyKey); found {
		if points, ok := v.([]models.DefectRatePoint); ok {
			metrics.RecordSeriesCache(true)
			return Clone(points), true
		}
	}
	metrics.RecordSeriesCache(false)
	return nil, false
}

func (c *seriesCache) set(points []models.DefectRatePoint) {
	c.cache.Set(dailyKey, Clone(points), c.ttl)
}

func (c *seriesCache) flush() {
	c.cache.Flush()
}

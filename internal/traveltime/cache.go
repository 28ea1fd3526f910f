package traveltime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/logging"
	"github.com/waggytrails/walker-scheduler/internal/models"
)

// Store is the persistent layer under the cache. Absent entries are
// reported as (nil, nil), not as an error.
type Store interface {
	GetEntry(ctx context.Context, fromID, toID uint) (*models.TravelTimeEntry, error)
	PutEntry(ctx context.Context, entry *models.TravelTimeEntry) error
	GetLocation(ctx context.Context, id uint) (*models.Location, error)
}

// Clock is injected so staleness tests stay deterministic.
type Clock func() time.Time

// Cache answers travel-time lookups from Redis first, then the persistent
// store, and only calls the external routing provider on a miss or a stale
// hit. Travel infrastructure changes slowly, so entries stay valid for the
// configured staleness window (default 30 days).
type Cache struct {
	store       Store
	rdb         *redis.Client
	provider    DistanceProvider
	staleAfter  time.Duration
	callTimeout time.Duration
	now         Clock
	log         *zap.Logger
}

func NewCache(
	store Store,
	rdb *redis.Client,
	provider DistanceProvider,
	staleAfter time.Duration,
	now Clock,
) *Cache {
	if staleAfter <= 0 {
		staleAfter = 30 * 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		store:       store,
		rdb:         rdb,
		provider:    provider,
		staleAfter:  staleAfter,
		callTimeout: 5 * time.Second,
		now:         now,
		log:         logging.L(),
	}
}

type cachedValue struct {
	Seconds    int       `json:"seconds"`
	Meters     int       `json:"meters"`
	ComputedAt time.Time `json:"computed_at"`
}

// Travel implements schedule.TravelSource. Identical location ids
// short-circuit to zero without touching any store or the provider.
func (c *Cache) Travel(ctx context.Context, fromID, toID uint) (schedule.TravelEstimate, error) {
	if fromID == toID {
		return schedule.TravelEstimate{}, nil
	}

	now := c.now()

	if v, ok := c.hotGet(ctx, fromID, toID); ok && c.fresh(v.ComputedAt, now) {
		return schedule.TravelEstimate{Seconds: v.Seconds, Meters: v.Meters}, nil
	}

	entry, err := c.store.GetEntry(ctx, fromID, toID)
	if err != nil {
		return schedule.TravelEstimate{}, err
	}
	if entry != nil && c.fresh(entry.ComputedAt, now) {
		c.hotSet(ctx, fromID, toID, cachedValue{
			Seconds:    entry.TravelSeconds,
			Meters:     entry.DistanceMeters,
			ComputedAt: entry.ComputedAt,
		})
		return schedule.TravelEstimate{
			Seconds: entry.TravelSeconds,
			Meters:  entry.DistanceMeters,
		}, nil
	}

	return c.refresh(ctx, fromID, toID, now)
}

// Populate stores an externally computed value, e.g. from a bulk import.
func (c *Cache) Populate(ctx context.Context, fromID, toID uint, seconds, meters int) error {
	now := c.now()
	if err := c.store.PutEntry(ctx, &models.TravelTimeEntry{
		FromLocationID: fromID,
		ToLocationID:   toID,
		TravelSeconds:  seconds,
		DistanceMeters: meters,
		ComputedAt:     now,
	}); err != nil {
		return err
	}
	c.hotSet(ctx, fromID, toID, cachedValue{Seconds: seconds, Meters: meters, ComputedAt: now})
	return nil
}

func (c *Cache) refresh(ctx context.Context, fromID, toID uint, now time.Time) (schedule.TravelEstimate, error) {
	from, err := c.store.GetLocation(ctx, fromID)
	if err != nil {
		return schedule.TravelEstimate{}, err
	}
	to, err := c.store.GetLocation(ctx, toID)
	if err != nil {
		return schedule.TravelEstimate{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	est, err := c.provider.Distance(
		callCtx,
		Coordinate{Lat: from.Latitude, Lng: from.Longitude},
		Coordinate{Lat: to.Latitude, Lng: to.Longitude},
	)
	if err != nil {
		return schedule.TravelEstimate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := c.store.PutEntry(ctx, &models.TravelTimeEntry{
		FromLocationID: fromID,
		ToLocationID:   toID,
		TravelSeconds:  est.Seconds,
		DistanceMeters: est.Meters,
		ComputedAt:     now,
	}); err != nil {
		return schedule.TravelEstimate{}, err
	}

	c.hotSet(ctx, fromID, toID, cachedValue{Seconds: est.Seconds, Meters: est.Meters, ComputedAt: now})

	return schedule.TravelEstimate{Seconds: est.Seconds, Meters: est.Meters}, nil
}

func (c *Cache) fresh(computedAt, now time.Time) bool {
	return now.Sub(computedAt) <= c.staleAfter
}

// Redis is a best-effort hot layer; its failures are logged and never fail
// a lookup.

func (c *Cache) hotGet(ctx context.Context, fromID, toID uint) (cachedValue, bool) {
	if c.rdb == nil {
		return cachedValue{}, false
	}
	raw, err := c.rdb.Get(ctx, hotKey(fromID, toID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("travel hot cache get failed", zap.Error(err))
		}
		return cachedValue{}, false
	}
	var v cachedValue
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return cachedValue{}, false
	}
	return v, true
}

func (c *Cache) hotSet(ctx context.Context, fromID, toID uint, v cachedValue) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, hotKey(fromID, toID), raw, c.staleAfter).Err(); err != nil {
		c.log.Debug("travel hot cache set failed", zap.Error(err))
	}
}

func hotKey(fromID, toID uint) string {
	return fmt.Sprintf("travel:%d:%d", fromID, toID)
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Policy decides whether an entry fetched at fetchedAt is still fresh
// at now. Policies are pure functions so freshness rules stay testable
// without a clock or a store.
type Policy func(fetchedAt, now time.Time) bool

// FixedAge returns a policy that accepts entries strictly younger than
// maxAge. An entry exactly maxAge old is stale.
func FixedAge(maxAge time.Duration) Policy {
	return func(fetchedAt, now time.Time) bool {
		return now.Sub(fetchedAt) < maxAge
	}
}

// SeasonAware narrows the freshness horizon during earnings season,
// when fundamentals can change between scans. Earnings season is
// approximated as the first six weeks of each quarter's reporting
// window (mid Jan, Apr, Jul, Oct).
func SeasonAware(normal, earnings time.Duration) Policy {
	return func(fetchedAt, now time.Time) bool {
		maxAge := normal
		if inEarningsSeason(now) {
			maxAge = earnings
		}
		return now.Sub(fetchedAt) < maxAge
	}
}

func inEarningsSeason(t time.Time) bool {
	switch t.Month() {
	case time.January, time.April, time.July, time.October:
		return t.Day() >= 10
	case time.February, time.May, time.August, time.November:
		return t.Day() <= 25
	default:
		return false
	}
}

// Cache combines a Store with a freshness Policy. A hit is only a hit
// when the entry is both present and fresh.
type Cache struct {
	store  Store
	policy Policy
	now    func() time.Time
}

// New builds a cache. now is replaceable for tests via WithClock.
func New(store Store, policy Policy) *Cache {
	return &Cache{store: store, policy: policy, now: time.Now}
}

// WithClock overrides the time source.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Get returns the payload for key if present and fresh, unmarshalled
// into dst. Stale or absent entries return ErrMiss.
func (c *Cache) Get(ctx context.Context, key string, dst any) error {
	e, err := c.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !c.policy(e.FetchedAt, c.now()) {
		return ErrMiss
	}
	return json.Unmarshal(e.Payload, dst)
}

// GetAllowStale returns the payload regardless of freshness, reporting
// whether it was fresh. Used when the provider is down and stale data
// beats no data.
func (c *Cache) GetAllowStale(ctx context.Context, key string, dst any) (fresh bool, err error) {
	e, err := c.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return false, err
	}
	return c.policy(e.FetchedAt, c.now()), nil
}

// Put stores the payload under key with the current time as FetchedAt.
func (c *Cache) Put(ctx context.Context, key string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", key, err)
	}
	return c.store.Put(ctx, Entry{
		Key:       key,
		FetchedAt: c.now(),
		Payload:   raw,
	})
}

// IsFresh reports whether key is present and fresh without decoding it.
func (c *Cache) IsFresh(ctx context.Context, key string) bool {
	e, err := c.store.Get(ctx, key)
	if err != nil {
		return false
	}
	return c.policy(e.FetchedAt, c.now())
}

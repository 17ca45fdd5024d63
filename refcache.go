package warera

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Region is a cached region attribute record, derived from the bulk region
// table. DepositBonus is a fraction (0.25 for 25%).
type Region struct {
	ID           string
	Name         string
	CountryID    string
	DepositItem  string // empty when the region has no deposit
	DepositBonus float64
	DepositEndsAt time.Time // zero when unknown
}

// DepositDelay returns how long the region's deposit remains active as of
// now, zero when expired or unknown.
func (r Region) DepositDelay(now time.Time) time.Duration {
	if r.DepositEndsAt.IsZero() {
		return 0
	}
	d := r.DepositEndsAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

// Country is a cached country attribute record. Bonus is the specialization
// production bonus as a fraction.
type Country struct {
	ID              string
	Name            string
	Bonus           float64
	SpecializedItem string
}

// Score is the production bonus a region offers for a given item.
// HasBonus reports a region-level deposit match only; a country-level
// specialization match contributes to Score but does not set it.
type Score struct {
	Score    float64
	HasBonus bool
}

// RankedRegion pairs a region with its score for one item.
type RankedRegion struct {
	Region Region
	Score  Score
}

// Lister is the slice of the remote API the reference cache needs.
type Lister interface {
	Regions(ctx context.Context) ([]Region, error)
	Countries(ctx context.Context) ([]Country, error)
}

// TimeoutError reports that a caller's cache-readiness budget expired. The
// underlying load is not cancelled and may still populate the cache for
// later callers.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("reference cache not ready within %s", e.Budget)
}

type cacheState int

const (
	cacheEmpty cacheState = iota
	cacheLoading
	cacheReady
)

// cacheFill is one in-flight bulk load. done is closed once err and the
// resulting maps are settled, which is what concurrent waiters block on.
type cacheFill struct {
	done chan struct{}
	err  error
}

// ReferenceCache holds per-session region and country attributes, loaded
// once from two bulk remote calls. Initialization is single-flight:
// concurrent EnsureReady callers share one load instead of each issuing the
// bulk calls. The cache is immutable once ready, until an explicit Clear.
type ReferenceCache struct {
	Log zerolog.Logger

	lister Lister

	mu        sync.Mutex
	state     cacheState
	fill      *cacheFill
	regions   map[string]Region
	countries map[string]Country
}

// NewReferenceCache returns an empty cache backed by the given lister.
func NewReferenceCache(lister Lister) *ReferenceCache {
	return &ReferenceCache{Log: zerolog.Nop(), lister: lister}
}

// Ready reports whether the bulk tables are loaded.
func (c *ReferenceCache) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == cacheReady
}

// EnsureReady loads the region and country tables if they are not loaded or
// loading, and waits for the load to settle.
//
// timeout bounds only how long this caller waits: on expiry it returns a
// TimeoutError while the load keeps running for the benefit of later
// callers. timeout <= 0 waits indefinitely. A failed load clears the flight
// so a later call can retry.
func (c *ReferenceCache) EnsureReady(ctx context.Context, timeout time.Duration) error {
	c.mu.Lock()
	if c.state == cacheReady {
		c.mu.Unlock()
		return nil
	}
	if c.state == cacheEmpty {
		fill := &cacheFill{done: make(chan struct{})}
		c.state = cacheLoading
		c.fill = fill
		go c.load(fill)
	}
	fill := c.fill
	c.mu.Unlock()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case <-fill.done:
		return fill.err
	case <-expired:
		return &TimeoutError{Budget: timeout}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// load performs the two bulk calls. It deliberately runs on a background
// context: a caller whose readiness budget expires must not abort the load.
func (c *ReferenceCache) load(fill *cacheFill) {
	ctx := context.Background()

	regions, err := c.lister.Regions(ctx)
	var countries []Country
	if err == nil {
		countries, err = c.lister.Countries(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(fill.done)

	if c.fill != fill {
		// Cleared while loading; discard the result but still release waiters.
		fill.err = err
		return
	}
	if err != nil {
		fill.err = err
		c.state = cacheEmpty
		c.fill = nil
		c.Log.Warn().Err(err).Msg("reference cache load failed")
		return
	}

	c.regions = make(map[string]Region, len(regions))
	for _, r := range regions {
		c.regions[r.ID] = r
	}
	c.countries = make(map[string]Country, len(countries))
	for _, co := range countries {
		c.countries[co.ID] = co
	}
	c.state = cacheReady
	c.fill = nil
	c.Log.Debug().Int("regions", len(regions)).Int("countries", len(countries)).Msg("reference cache ready")
}

// Clear empties the cache and allows re-initialization. It must be called
// when the target identity changes.
func (c *ReferenceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = cacheEmpty
	c.fill = nil
	c.regions = nil
	c.countries = nil
}

// Region returns the cached record for a region id.
func (c *ReferenceCache) Region(id string) (Region, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.regions[id]
	return r, ok
}

// Country returns the cached record for a country id.
func (c *ReferenceCache) Country(id string) (Country, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	co, ok := c.countries[id]
	return co, ok
}

// RegionScore sums the region's deposit bonus (when its deposit item matches
// itemCode) and its country's specialization bonus (when the specialized
// item matches). An unknown region scores zero.
func (c *ReferenceCache) RegionScore(regionID, itemCode string) Score {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.score(regionID, itemCode)
}

func (c *ReferenceCache) score(regionID, itemCode string) Score {
	var s Score
	region, ok := c.regions[regionID]
	if !ok || itemCode == "" {
		return s
	}
	if region.DepositItem == itemCode {
		s.Score += region.DepositBonus
		s.HasBonus = true
	}
	if country, ok := c.countries[region.CountryID]; ok && country.SpecializedItem == itemCode {
		s.Score += country.Bonus
	}
	return s
}

// RankRegions scores every cached region for the given item and returns them
// sorted by score, best first.
func (c *ReferenceCache) RankRegions(itemCode string) []RankedRegion {
	c.mu.Lock()
	defer c.mu.Unlock()
	ranked := make([]RankedRegion, 0, len(c.regions))
	for _, r := range c.regions {
		ranked = append(ranked, RankedRegion{Region: r, Score: c.score(r.ID, itemCode)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score.Score != ranked[j].Score.Score {
			return ranked[i].Score.Score > ranked[j].Score.Score
		}
		return ranked[i].Region.Name < ranked[j].Region.Name
	})
	return ranked
}

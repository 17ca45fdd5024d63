package warera

import (
	"context"
	"errors"
	"testing"
)

type fakePriceGetter struct {
	prices map[string]float64
	calls  int
	err    error
}

func (f *fakePriceGetter) TopOrderPrice(ctx context.Context, itemCode string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.prices[itemCode], nil
}

func TestPriceCacheMemoizes(t *testing.T) {
	getter := &fakePriceGetter{prices: map[string]float64{"iron": 1.25}}
	cache := NewPriceCache(getter)

	for i := 0; i < 3; i++ {
		p, err := cache.Price(context.Background(), "iron")
		if err != nil {
			t.Fatal(err)
		}
		if p != 1.25 {
			t.Errorf("Price = %v, want 1.25", p)
		}
	}
	if getter.calls != 1 {
		t.Errorf("remote calls = %d, want 1", getter.calls)
	}
}

// TestPriceCacheZeroIsCached: an empty order book (price 0) is a legitimate
// answer and must not trigger refetching.
func TestPriceCacheZeroIsCached(t *testing.T) {
	getter := &fakePriceGetter{}
	cache := NewPriceCache(getter)

	for i := 0; i < 2; i++ {
		if p, err := cache.Price(context.Background(), "oil"); err != nil || p != 0 {
			t.Fatalf("Price = %v, %v", p, err)
		}
	}
	if getter.calls != 1 {
		t.Errorf("remote calls = %d, want 1", getter.calls)
	}
}

// TestPriceCacheErrorNotCached: a failed fetch leaves the item uncached so a
// later call retries.
func TestPriceCacheErrorNotCached(t *testing.T) {
	getter := &fakePriceGetter{err: errors.New("api down"), prices: map[string]float64{"iron": 2}}
	cache := NewPriceCache(getter)

	if _, err := cache.Price(context.Background(), "iron"); err == nil {
		t.Fatal("expected an error")
	}
	getter.err = nil
	p, err := cache.Price(context.Background(), "iron")
	if err != nil || p != 2 {
		t.Fatalf("retry Price = %v, %v", p, err)
	}
	if getter.calls != 2 {
		t.Errorf("remote calls = %d, want 2", getter.calls)
	}
}

func TestPriceCacheClear(t *testing.T) {
	getter := &fakePriceGetter{prices: map[string]float64{"iron": 1}}
	cache := NewPriceCache(getter)

	if _, err := cache.Price(context.Background(), "iron"); err != nil {
		t.Fatal(err)
	}
	cache.Clear()
	if _, err := cache.Price(context.Background(), "iron"); err != nil {
		t.Fatal(err)
	}
	if getter.calls != 2 {
		t.Errorf("remote calls = %d, want 2 after Clear", getter.calls)
	}
}

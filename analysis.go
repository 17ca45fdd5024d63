package warera

import "github.com/shopspring/decimal"

// UnknownItem is the bucket name used for trading records without an item code.
const UnknownItem = "Unknown"

// Bucket accumulates buy/sell figures for a single item code or transaction
// type. Count includes records where the target was neither buyer nor seller.
type Bucket struct {
	Name      string
	Count     int
	BuyQty    float64
	SellQty   float64
	BuyTotal  decimal.Decimal
	SellTotal decimal.Decimal
}

// Analysis is the rollup of a period of transactions from the point of view
// of one target identity.
type Analysis struct {
	Count     int
	TotalBuy  decimal.Decimal
	TotalSell decimal.Decimal
	NetProfit decimal.Decimal // TotalSell - TotalBuy, rounded to 2 decimals
	ByItem    map[string]*Bucket
	ByType    map[string]*Bucket
}

// Aggregate computes per-item and per-type rollups for the given target
// identity. It is a pure function of its inputs.
//
// Trading records bucket by item code into ByItem, every other type buckets
// by type into ByType, so callers can render "by resource" and "by category"
// views independently. A record where the target is neither buyer nor seller
// still counts in its bucket; a self-trade increments both sides.
//
// Only the global NetProfit is rounded; per-bucket totals keep full precision.
func Aggregate(transactions []Transaction, targetID string) *Analysis {
	a := &Analysis{
		Count:  len(transactions),
		ByItem: make(map[string]*Bucket),
		ByType: make(map[string]*Bucket),
	}

	for _, t := range transactions {
		isBuyer := t.BuyerID == targetID
		isSeller := t.SellerID == targetID
		money := decimal.NewFromFloat(t.Money)

		if isBuyer {
			a.TotalBuy = a.TotalBuy.Add(money)
		}
		if isSeller {
			a.TotalSell = a.TotalSell.Add(money)
		}

		bucket := a.bucketFor(t)
		bucket.Count++
		if isBuyer {
			bucket.BuyQty += t.Quantity
			bucket.BuyTotal = bucket.BuyTotal.Add(money)
		}
		if isSeller {
			bucket.SellQty += t.Quantity
			bucket.SellTotal = bucket.SellTotal.Add(money)
		}
	}

	a.NetProfit = a.TotalSell.Sub(a.TotalBuy).Round(2)
	return a
}

func (a *Analysis) bucketFor(t Transaction) *Bucket {
	key := string(t.Type)
	buckets := a.ByType
	if t.Type == Trading {
		buckets = a.ByItem
		key = t.ItemCode
		if key == "" {
			key = UnknownItem
		}
	}
	b, ok := buckets[key]
	if !ok {
		b = &Bucket{Name: key}
		buckets[key] = b
	}
	return b
}

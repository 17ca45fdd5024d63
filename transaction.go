package warera

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// TransactionType identifies one category of money movement in the game economy.
type TransactionType string

const (
	Wage           TransactionType = "wage"
	ItemMarket     TransactionType = "itemMarket"
	Trading        TransactionType = "trading"
	Donation       TransactionType = "donation"
	ApplicationFee TransactionType = "applicationFee"
)

// TrackedTypes is the closed set of transaction types pulled by the
// synchronization engine. Other types exist upstream but are not of interest
// for economy analysis.
var TrackedTypes = []TransactionType{Wage, ItemMarket, Trading, Donation, ApplicationFee}

// Transaction is a single money movement from the remote feed, as persisted
// in the local store.
//
// CreatedAt is the ordering key. A zero CreatedAt means the feed omitted the
// field; the store substitutes the ingestion time on write rather than
// dropping the record.
type Transaction struct {
	ID        string
	CreatedAt time.Time
	Type      TransactionType
	BuyerID   string
	SellerID  string
	ItemCode  string
	Money     float64
	Quantity  float64
}

// UnmarshalJSON tolerates the feed's loose typing: money and quantity arrive
// as numbers or numeric strings (anything else coerces to 0), identity
// references as strings or numbers, and createdAt may be absent.
func (t *Transaction) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        string          `json:"_id"`
		CreatedAt string          `json:"createdAt"`
		Type      TransactionType `json:"transactionType"`
		BuyerID   json.RawMessage `json:"buyerId"`
		SellerID  json.RawMessage `json:"sellerId"`
		ItemCode  string          `json:"itemCode"`
		Money     json.RawMessage `json:"money"`
		Quantity  json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t.ID = raw.ID
	t.Type = raw.Type
	t.ItemCode = raw.ItemCode
	t.BuyerID = looseString(raw.BuyerID)
	t.SellerID = looseString(raw.SellerID)
	t.Money = looseNumber(raw.Money)
	t.Quantity = looseNumber(raw.Quantity)
	t.CreatedAt = time.Time{}
	if raw.CreatedAt != "" {
		if on, err := time.Parse(time.RFC3339, raw.CreatedAt); err == nil {
			t.CreatedAt = on.UTC()
		}
	}
	return nil
}

// MarshalJSON writes the record back in the feed's shape, with the canonical
// timestamp format.
func (t Transaction) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"_id":             t.ID,
		"transactionType": t.Type,
		"buyerId":         t.BuyerID,
		"sellerId":        t.SellerID,
		"money":           t.Money,
		"quantity":        t.Quantity,
	}
	if t.ItemCode != "" {
		out["itemCode"] = t.ItemCode
	}
	if !t.CreatedAt.IsZero() {
		out["createdAt"] = FormatTimestamp(t.CreatedAt)
	}
	return json.Marshal(out)
}

// Normalize applies the documented ingestion coercions: non-finite amounts
// become 0 and a missing creation time is replaced by now, truncated to the
// canonical millisecond granularity.
func (t *Transaction) Normalize(now time.Time) {
	if math.IsNaN(t.Money) || math.IsInf(t.Money, 0) {
		t.Money = 0
	}
	if math.IsNaN(t.Quantity) || math.IsInf(t.Quantity, 0) {
		t.Quantity = 0
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.CreatedAt = t.CreatedAt.UTC().Truncate(time.Millisecond)
}

// looseString reads a JSON value that should be a string but is sometimes a
// number in the wild.
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

// looseNumber reads a JSON value that should be a number but is sometimes a
// numeric string; anything unreadable coerces to 0.
func looseNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

// TransactionQuery selects one page of the remote transaction feed.
type TransactionQuery struct {
	UserID string
	Types  []TransactionType
	Limit  int
	Cursor string // empty requests the first (newest) page
}

// TransactionPage is one page of the remote feed, newest first.
type TransactionPage struct {
	Items      []Transaction
	NextCursor string // empty when the feed is exhausted
}

package warera

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestTransactionUnmarshalLooseTypes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, tx Transaction)
	}{
		{
			name: "well formed",
			input: `{"_id":"t1","createdAt":"2025-07-01T09:30:15.123Z","transactionType":"trading",
				"buyerId":"u1","sellerId":"u2","itemCode":"iron","money":12.5,"quantity":3}`,
			check: func(t *testing.T, tx Transaction) {
				if tx.ID != "t1" || tx.Type != Trading || tx.ItemCode != "iron" {
					t.Errorf("identity fields: %+v", tx)
				}
				if tx.Money != 12.5 || tx.Quantity != 3 {
					t.Errorf("amounts: money=%v quantity=%v", tx.Money, tx.Quantity)
				}
				want := time.Date(2025, 7, 1, 9, 30, 15, 123e6, time.UTC)
				if !tx.CreatedAt.Equal(want) {
					t.Errorf("createdAt = %v, want %v", tx.CreatedAt, want)
				}
			},
		},
		{
			name:  "numeric strings",
			input: `{"_id":"t2","money":"12.5","quantity":"3"}`,
			check: func(t *testing.T, tx Transaction) {
				if tx.Money != 12.5 || tx.Quantity != 3 {
					t.Errorf("money=%v quantity=%v, want 12.5 and 3", tx.Money, tx.Quantity)
				}
			},
		},
		{
			name:  "garbage amounts coerce to zero",
			input: `{"_id":"t3","money":"a lot","quantity":{"nested":true}}`,
			check: func(t *testing.T, tx Transaction) {
				if tx.Money != 0 || tx.Quantity != 0 {
					t.Errorf("money=%v quantity=%v, want 0 and 0", tx.Money, tx.Quantity)
				}
			},
		},
		{
			name:  "null and missing fields",
			input: `{"_id":"t4","money":null}`,
			check: func(t *testing.T, tx Transaction) {
				if tx.Money != 0 || tx.Quantity != 0 || tx.BuyerID != "" || tx.SellerID != "" {
					t.Errorf("unexpected defaults: %+v", tx)
				}
				if !tx.CreatedAt.IsZero() {
					t.Errorf("missing createdAt should stay zero, got %v", tx.CreatedAt)
				}
			},
		},
		{
			name:  "numeric identity references",
			input: `{"_id":"t5","buyerId":12345,"sellerId":"u2"}`,
			check: func(t *testing.T, tx Transaction) {
				if tx.BuyerID != "12345" || tx.SellerID != "u2" {
					t.Errorf("buyerId=%q sellerId=%q", tx.BuyerID, tx.SellerID)
				}
			},
		},
		{
			name:  "unreadable createdAt stays zero",
			input: `{"_id":"t6","createdAt":"yesterday"}`,
			check: func(t *testing.T, tx Transaction) {
				if !tx.CreatedAt.IsZero() {
					t.Errorf("createdAt = %v, want zero", tx.CreatedAt)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tx Transaction
			if err := json.Unmarshal([]byte(tt.input), &tx); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			tt.check(t, tx)
		})
	}
}

func TestNormalize(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 123456789, time.UTC)

	tx := Transaction{ID: "t1", Money: math.NaN(), Quantity: math.Inf(1)}
	tx.Normalize(now)
	if tx.Money != 0 || tx.Quantity != 0 {
		t.Errorf("non-finite amounts not coerced: money=%v quantity=%v", tx.Money, tx.Quantity)
	}
	if want := now.Truncate(time.Millisecond); !tx.CreatedAt.Equal(want) {
		t.Errorf("missing createdAt = %v, want %v", tx.CreatedAt, want)
	}

	// An existing timestamp is kept, just truncated to the millisecond.
	at := time.Date(2025, 6, 30, 8, 0, 0, 987654321, time.UTC)
	tx = Transaction{ID: "t2", CreatedAt: at}
	tx.Normalize(now)
	if want := at.Truncate(time.Millisecond); !tx.CreatedAt.Equal(want) {
		t.Errorf("createdAt = %v, want %v", tx.CreatedAt, want)
	}
}

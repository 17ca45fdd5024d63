package trpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nroux/warera"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, "test-key")
}

func TestCallUnwrapsEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user.getUserLite", r.URL.Path)
		w.Write([]byte(`{"result":{"data":{"username":"alice"}}}`))
	})

	raw, err := client.Call(context.Background(), "user.getUserLite", map[string]any{"userId": "u1"})
	require.NoError(t, err)
	require.JSONEq(t, `{"username":"alice"}`, string(raw))
}

// TestCallBarePayload: a reply without the envelope passes through unchanged.
func TestCallBarePayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"username":"alice"}`))
	})

	raw, err := client.Call(context.Background(), "user.getUserLite", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"username":"alice"}`, string(raw))
}

func TestCallEncodesInput(t *testing.T) {
	var gotInput string
	var gotKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotInput = r.URL.Query().Get("input")
		gotKey = r.Header.Get("X-API-Key")
		w.Write([]byte(`{}`))
	})

	_, err := client.Call(context.Background(), "proc", map[string]any{
		"userId": "u1",
		"limit":  10,
		"cursor": nil, // nil values must be stripped, not sent as null
	})
	require.NoError(t, err)
	require.Equal(t, "test-key", gotKey)

	var input map[string]any
	require.NoError(t, json.Unmarshal([]byte(gotInput), &input))
	require.Equal(t, map[string]any{"userId": "u1", "limit": 10.0}, input)
}

// TestCallWithoutKey: an empty key means no header at all, not an empty one.
func TestCallWithoutKey(t *testing.T) {
	var hasHeader bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasHeader = r.Header["X-Api-Key"]
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(server.URL, "")
	_, err := client.Call(context.Background(), "proc", nil)
	require.NoError(t, err)
	require.False(t, hasHeader)
}

func TestCallErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	})

	_, err := client.Call(context.Background(), "proc", nil)
	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, http.StatusUnauthorized, rpcErr.Status)
	require.Equal(t, "invalid api key", rpcErr.Message)
	require.Contains(t, rpcErr.Error(), "proc")
}

// TestCallErrorNonJSON: an unreadable error body falls back to the HTTP
// status without failing the error path itself.
func TestCallErrorNonJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, err := client.Call(context.Background(), "proc", nil)
	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, "HTTP 502", rpcErr.Message)
}

func TestTransactions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var input map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("input")), &input))
		require.Equal(t, "u1", input["userId"])
		require.NotContains(t, input, "cursor", "first page sends no cursor")

		w.Write([]byte(`{"result":{"data":{
			"items":[
				{"_id":"t2","createdAt":"2025-07-01T10:00:00.000Z","transactionType":"trading","money":"5","quantity":1},
				{"_id":"t1","createdAt":"2025-07-01T09:00:00.000Z","transactionType":"wage","money":2}
			],
			"nextCursor":"abc"}}}`))
	})

	page, err := client.Transactions(context.Background(), warera.TransactionQuery{
		UserID: "u1",
		Types:  warera.TrackedTypes,
		Limit:  100,
	})
	require.NoError(t, err)
	require.Equal(t, "abc", page.NextCursor)
	require.Len(t, page.Items, 2)
	require.Equal(t, "t2", page.Items[0].ID)
	require.Equal(t, 5.0, page.Items[0].Money, "numeric string must coerce")
	require.Equal(t, warera.Wage, page.Items[1].Type)
}

func TestRegions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"data":{
			"r1":{"_id":"r1","name":"Ruhr","country":"c1",
				"deposit":{"type":"iron","bonusPercent":25,"endsAt":"2025-07-02T00:00:00.000Z"}},
			"r2":{"_id":"r2","name":"Alsace","country":"c1"}}}}`))
	})

	regions, err := client.Regions(context.Background())
	require.NoError(t, err)
	require.Len(t, regions, 2)

	byID := map[string]warera.Region{}
	for _, r := range regions {
		byID[r.ID] = r
	}
	require.Equal(t, "iron", byID["r1"].DepositItem)
	require.Equal(t, 0.25, byID["r1"].DepositBonus)
	require.Empty(t, byID["r2"].DepositItem)
	require.True(t, byID["r2"].DepositEndsAt.IsZero())
}

func TestCountries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"data":[
			{"_id":"c1","name":"Germany","specializedItem":"iron",
			 "strategicResources":{"bonuses":{"productionPercent":15}}}]}}`))
	})

	countries, err := client.Countries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 1)
	require.Equal(t, 0.15, countries[0].Bonus)
	require.Equal(t, "iron", countries[0].SpecializedItem)
}

func TestUserLite(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"data":{"username":"alice",
			"skills":{"production":{"value":14},"energy":{"hourlyBarRegen":5}}}}}`))
	})

	profile, err := client.UserLite(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "alice", profile.Name)
	require.Equal(t, 14.0, profile.Production)
	require.Equal(t, 12.0, profile.EstimatedWorkPerDay)
}

// TestUserLiteNotFound: the API answers 200 with an empty object for unknown
// users; that must surface as an error, not an empty profile.
func TestUserLiteNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"data":{}}}`))
	})

	_, err := client.UserLite(context.Background(), "nope")
	require.Error(t, err)
}

func TestTopOrderPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"data":{"sellOrders":[{"price":1.25},{"price":1.30}]}}}`))
	})
	p, err := client.TopOrderPrice(context.Background(), "iron")
	require.NoError(t, err)
	require.Equal(t, 1.25, p)
}

// TestTopOrderPriceEmptyBook: no sell orders means price 0, not an error.
func TestTopOrderPriceEmptyBook(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"data":{"sellOrders":[]}}}`))
	})
	p, err := client.TopOrderPrice(context.Background(), "iron")
	require.NoError(t, err)
	require.Zero(t, p)
}

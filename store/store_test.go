package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nroux/warera"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warera.db")
	st, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st, path
}

func tx(id string, at time.Time, money float64) warera.Transaction {
	return warera.Transaction{
		ID:        id,
		CreatedAt: at,
		Type:      warera.Trading,
		BuyerID:   "u1",
		SellerID:  "u2",
		ItemCode:  "iron",
		Money:     money,
		Quantity:  1,
	}
}

func TestOpenCreatesAndReopens(t *testing.T) {
	st, path := openTestStore(t)
	ctx := context.Background()

	n, err := st.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	at := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.UpsertMany(ctx, []warera.Transaction{tx("t1", at, 5)}))
	require.NoError(t, st.Close())

	// Reopening re-applies pragmas and schema without touching data.
	st2, err := Open(path)
	require.NoError(t, err)
	defer st2.Close()
	n, err = st2.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestUpsertIdempotent(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, st.UpsertMany(ctx, []warera.Transaction{tx("t1", at, 5)}))
	// Same id again, with a different amount: overwrite, not duplicate.
	require.NoError(t, st.UpsertMany(ctx, []warera.Transaction{tx("t1", at, 7)}))

	n, err := st.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	day := warera.NewDate(2025, 7, 1)
	records, err := st.QueryRange(ctx, day, day)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 7.0, records[0].Money)
}

func TestUpsertStampsMissingTimestamp(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	before := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, st.UpsertMany(ctx, []warera.Transaction{{ID: "t1", Type: warera.Wage}}))
	after := time.Now().UTC()

	newest, err := st.MostRecentTimestamp(ctx)
	require.NoError(t, err)
	stamped, err := warera.ParseTimestamp(newest)
	require.NoError(t, err)
	require.False(t, stamped.Before(before), "stamped %v before %v", stamped, before)
	require.False(t, stamped.After(after), "stamped %v after %v", stamped, after)
}

func TestBoundaryTimestamps(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	newest, err := st.MostRecentTimestamp(ctx)
	require.NoError(t, err)
	require.Empty(t, newest, "empty store has no watermark")
	oldest, err := st.OldestTimestamp(ctx)
	require.NoError(t, err)
	require.Empty(t, oldest)

	require.NoError(t, st.UpsertMany(ctx, []warera.Transaction{
		tx("t1", time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC), 1),
		tx("t2", time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC), 1),
		tx("t3", time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC), 1),
	}))

	newest, err = st.MostRecentTimestamp(ctx)
	require.NoError(t, err)
	require.Equal(t, "2025-07-03T10:00:00.000Z", newest)
	oldest, err = st.OldestTimestamp(ctx)
	require.NoError(t, err)
	require.Equal(t, "2025-07-01T10:00:00.000Z", oldest)
}

// TestQueryRangeInclusive: both period bounds are inclusive, down to the
// first and last millisecond of the day.
func TestQueryRangeInclusive(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertMany(ctx, []warera.Transaction{
		tx("before", time.Date(2025, 6, 30, 23, 59, 59, 999e6, time.UTC), 1),
		tx("start", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), 1),
		tx("mid", time.Date(2025, 7, 2, 12, 0, 0, 0, time.UTC), 1),
		tx("end", time.Date(2025, 7, 3, 23, 59, 59, 999e6, time.UTC), 1),
		tx("after", time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), 1),
	}))

	records, err := st.QueryRange(ctx, warera.NewDate(2025, 7, 1), warera.NewDate(2025, 7, 3))
	require.NoError(t, err)

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	require.ElementsMatch(t, []string{"start", "mid", "end"}, ids)
}

func TestQueryRangeRoundTrip(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 7, 1, 9, 30, 15, 123e6, time.UTC)
	in := tx("t1", at, 12.5)

	require.NoError(t, st.UpsertMany(ctx, []warera.Transaction{in}))
	day := warera.NewDate(2025, 7, 1)
	records, err := st.QueryRange(ctx, day, day)
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	require.True(t, got.CreatedAt.Equal(at), "CreatedAt = %v, want %v", got.CreatedAt, at)
	got.CreatedAt = in.CreatedAt
	require.Equal(t, in, got)
}

func TestUpsertEmptyBatch(t *testing.T) {
	st, _ := openTestStore(t)
	require.NoError(t, st.UpsertMany(context.Background(), nil))
}

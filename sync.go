package warera

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// pageLimit is the page size requested from the remote transaction feed.
const pageLimit = 100

// ErrMissingUser is returned when a sync run is requested without a target
// user identity. It is rejected before any I/O is attempted.
var ErrMissingUser = errors.New("target user id is required")

// ErrSyncInProgress is returned when a second sync run is requested while one
// is still in flight. Interleaved runs would break watermark semantics, so
// the engine rejects them instead of queueing.
var ErrSyncInProgress = errors.New("a sync run is already in progress")

// ProtocolError reports a violation of the feed's newest-first ordering
// guarantee. The stop-on-overlap rule is unsound on a reordered feed, so the
// engine fails loudly instead of risking silent gaps.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string { return "protocol: " + e.Msg }

// TransactionFetcher is the slice of the remote API the sync engine needs.
type TransactionFetcher interface {
	Transactions(ctx context.Context, q TransactionQuery) (TransactionPage, error)
}

// Store is the slice of the local persistent store the library needs.
type Store interface {
	// UpsertMany writes records keyed by id, overwriting on collision.
	// All writes of one call form a single transactional batch.
	UpsertMany(ctx context.Context, records []Transaction) error
	// MostRecentTimestamp returns the newest stored creation timestamp in
	// canonical format, or "" when the store is empty.
	MostRecentTimestamp(ctx context.Context) (string, error)
	// OldestTimestamp is the symmetric lower bound.
	OldestTimestamp(ctx context.Context) (string, error)
	// Count returns the total number of stored transactions.
	Count(ctx context.Context) (int, error)
}

// Result reports the outcome of one sync run. Err is set instead of
// propagating an error so callers always receive well-formed counts; pages
// committed before a failure stay committed.
type Result struct {
	NewCount  int
	TotalInDB int
	Err       error
}

// Syncer pulls a user's transaction feed page by page and commits new
// records to the local store.
//
// The feed is newest-first. The run captures a watermark (the newest already
// stored timestamp) once at start; the first record at or before the
// watermark marks the point where previously synced history resumes, and the
// run stops there. Records with a timestamp exactly equal to the watermark
// are skipped: ids make re-saving harmless but also pointless.
type Syncer struct {
	Log zerolog.Logger

	fetcher TransactionFetcher
	store   Store
	running atomic.Bool
}

// NewSyncer returns a Syncer with logging disabled.
func NewSyncer(fetcher TransactionFetcher, store Store) *Syncer {
	return &Syncer{Log: zerolog.Nop(), fetcher: fetcher, store: store}
}

// Run performs one full sync for the given user.
//
// After each committed page the cumulative number of records synced this run
// is sent on progress; a nil channel disables reporting and a slow receiver
// never blocks the run. Run is not reentrant: a concurrent call returns
// ErrSyncInProgress in the Result.
func (s *Syncer) Run(ctx context.Context, userID string, progress chan<- int) Result {
	if strings.TrimSpace(userID) == "" {
		return Result{Err: ErrMissingUser}
	}
	if !s.running.CompareAndSwap(false, true) {
		return Result{Err: ErrSyncInProgress}
	}
	defer s.running.Store(false)

	// The watermark is captured once per run, never refreshed mid-run.
	watermark, err := s.store.MostRecentTimestamp(ctx)
	if err != nil {
		return s.fail(ctx, 0, fmt.Errorf("reading watermark: %w", err))
	}
	var mark time.Time
	if watermark != "" {
		mark, err = ParseTimestamp(watermark)
		if err != nil {
			return s.fail(ctx, 0, fmt.Errorf("corrupt watermark %q: %w", watermark, err))
		}
	}
	s.Log.Debug().Str("user", userID).Str("watermark", watermark).Msg("sync started")

	var cursor string
	synced := 0
	for {
		page, err := s.fetcher.Transactions(ctx, TransactionQuery{
			UserID: userID,
			Types:  TrackedTypes,
			Limit:  pageLimit,
			Cursor: cursor,
		})
		if err != nil {
			return s.fail(ctx, synced, err)
		}
		if len(page.Items) == 0 {
			break // feed exhausted
		}

		batch, caughtUp, err := splitAtWatermark(page.Items, mark)
		if err != nil {
			return s.fail(ctx, synced, err)
		}

		if len(batch) > 0 {
			if err := s.store.UpsertMany(ctx, batch); err != nil {
				return s.fail(ctx, synced, fmt.Errorf("saving page: %w", err))
			}
			synced += len(batch)
			notify(progress, synced)
			s.Log.Debug().Int("synced", synced).Msg("page committed")
		}

		if caughtUp || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return s.fail(ctx, synced, fmt.Errorf("counting after sync: %w", err))
	}
	s.Log.Info().Int("new", synced).Int("total", total).Msg("sync complete")
	return Result{NewCount: synced, TotalInDB: total}
}

// fail converts an error into a Result, keeping best-effort counts so the
// caller can still display something sensible.
func (s *Syncer) fail(ctx context.Context, synced int, err error) Result {
	s.Log.Error().Err(err).Int("synced", synced).Msg("sync failed")
	total, cErr := s.store.Count(ctx)
	if cErr != nil {
		total = 0
	}
	return Result{NewCount: synced, TotalInDB: total, Err: err}
}

// splitAtWatermark returns the prefix of a newest-first page that is strictly
// newer than the watermark, and whether the watermark boundary was reached.
//
// Server order guarantees nothing older appears after the boundary within a
// page, so consumption stops at the first record at or before the watermark.
// That guarantee is a precondition: any timestamp increase within the page is
// a ProtocolError. Records without a timestamp cannot participate in either
// check and are buffered as new (the store stamps them at save time).
func splitAtWatermark(items []Transaction, mark time.Time) (batch []Transaction, caughtUp bool, err error) {
	var prev time.Time
	for i, tx := range items {
		if tx.CreatedAt.IsZero() {
			continue
		}
		if !prev.IsZero() && tx.CreatedAt.After(prev) {
			return nil, false, &ProtocolError{Msg: fmt.Sprintf(
				"transaction feed is not newest-first: %s (%s) follows %s",
				tx.ID, FormatTimestamp(tx.CreatedAt), FormatTimestamp(prev))}
		}
		prev = tx.CreatedAt
		if !mark.IsZero() && !tx.CreatedAt.After(mark) {
			return items[:i], true, nil
		}
	}
	return items, false, nil
}

// notify pushes the cumulative count without ever blocking the run.
func notify(progress chan<- int, n int) {
	if progress == nil {
		return
	}
	select {
	case progress <- n:
	default:
	}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nroux/warera"
)

// The Store implements the library's persistence interface.
var _ warera.Store = (*Store)(nil)

// UpsertMany writes each record keyed by id, overwriting on collision, as a
// single SQL transaction: either the whole batch lands or none of it does.
// Records are normalized before writing (numeric coercion, missing creation
// time replaced by now).
func (s *Store) UpsertMany(ctx context.Context, records []warera.Transaction) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin batch: %w", err)
	}
	defer tx.Rollback() // no-op once committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions
		(id, created_at, transaction_type, buyer_id, seller_id, item_code, money, quantity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			transaction_type = excluded.transaction_type,
			buyer_id = excluded.buyer_id,
			seller_id = excluded.seller_id,
			item_code = excluded.item_code,
			money = excluded.money,
			quantity = excluded.quantity
	`)
	if err != nil {
		return fmt.Errorf("storage: prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, record := range records {
		record.Normalize(now)
		_, err := stmt.ExecContext(ctx,
			record.ID,
			warera.FormatTimestamp(record.CreatedAt),
			string(record.Type),
			record.BuyerID,
			record.SellerID,
			record.ItemCode,
			record.Money,
			record.Quantity,
		)
		if err != nil {
			return fmt.Errorf("storage: upsert %s: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit batch: %w", err)
	}
	return nil
}

// MostRecentTimestamp returns the newest stored creation timestamp, or ""
// when the store is empty.
func (s *Store) MostRecentTimestamp(ctx context.Context) (string, error) {
	return s.boundaryTimestamp(ctx, "MAX")
}

// OldestTimestamp returns the oldest stored creation timestamp, or "" when
// the store is empty.
func (s *Store) OldestTimestamp(ctx context.Context) (string, error) {
	return s.boundaryTimestamp(ctx, "MIN")
}

func (s *Store) boundaryTimestamp(ctx context.Context, fn string) (string, error) {
	var ts sql.NullString
	query := fmt.Sprintf(`SELECT %s(created_at) FROM transactions`, fn)
	if err := s.db.QueryRowContext(ctx, query).Scan(&ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("storage: %s(created_at): %w", fn, err)
	}
	return ts.String, nil
}

// QueryRange returns all transactions whose creation time falls within the
// given calendar days, both inclusive, interpreted as UTC. The lookup goes
// through the created_at index; results are unordered.
func (s *Store) QueryRange(ctx context.Context, from, to warera.Date) ([]warera.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, transaction_type, buyer_id, seller_id, item_code, money, quantity
		FROM transactions
		WHERE created_at BETWEEN ? AND ?
	`, from.DayStart(), to.DayEnd())
	if err != nil {
		return nil, fmt.Errorf("storage: range query: %w", err)
	}
	defer rows.Close()

	var result []warera.Transaction
	for rows.Next() {
		var t warera.Transaction
		var createdAt, transactionType string
		err := rows.Scan(&t.ID, &createdAt, &transactionType, &t.BuyerID, &t.SellerID, &t.ItemCode, &t.Money, &t.Quantity)
		if err != nil {
			return nil, fmt.Errorf("storage: scan transaction: %w", err)
		}
		t.Type = warera.TransactionType(transactionType)
		t.CreatedAt, err = warera.ParseTimestamp(createdAt)
		if err != nil {
			return nil, fmt.Errorf("storage: corrupt created_at %q: %w", createdAt, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: range query: %w", err)
	}
	return result, nil
}

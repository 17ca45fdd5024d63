package warera

import "context"

// Overview summarizes the local store for display.
type Overview struct {
	TotalTransactions int
	LastUpdate        string // canonical timestamp, "" when the store is empty
	Oldest            string
}

// NewOverview reads the store's headline figures.
func NewOverview(ctx context.Context, s Store) (Overview, error) {
	total, err := s.Count(ctx)
	if err != nil {
		return Overview{}, err
	}
	last, err := s.MostRecentTimestamp(ctx)
	if err != nil {
		return Overview{}, err
	}
	oldest, err := s.OldestTimestamp(ctx)
	if err != nil {
		return Overview{}, err
	}
	return Overview{TotalTransactions: total, LastUpdate: last, Oldest: oldest}, nil
}

package storage

import "context"

type Storage interface {
	// Organization returns the cached row for number, or ErrNotFound.
	Organization(ctx context.Context, number string) (*Data, error)
	// Upsert stores org keyed by its number. A row for the same number is overwritten,
	// never duplicated.
	Upsert(ctx context.Context, org Organization) error
}

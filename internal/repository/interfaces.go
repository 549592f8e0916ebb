package repository

import (
	"context"

	"github.com/Kosench/keyed-url-shortener/internal/model"
)

// URLRepository is the sole owner of stored entries. Entries cross the
// boundary by value; every mutation is a single atomic statement.
type URLRepository interface {
	// Create inserts an active entry with zero clicks. It returns
	// ErrKeyConflict when the key or secret key is already taken.
	Create(ctx context.Context, entry model.URLEntry) (model.URLEntry, error)
	ExistsByKey(ctx context.Context, key string) (bool, error)
	ExistsBySecretKey(ctx context.Context, secretKey string) (bool, error)
	GetBySecretKey(ctx context.Context, secretKey string) (model.URLEntry, error)
	SetActive(ctx context.Context, secretKey string, active bool) (model.URLEntry, error)
	// IncrementClicks adds one click to the active entry stored under key and
	// returns it. Inactive or missing entries yield ErrURLNotFound.
	IncrementClicks(ctx context.Context, key string) (model.URLEntry, error)
}

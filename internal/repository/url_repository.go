package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Kosench/keyed-url-shortener/internal/database"
	apperrors "github.com/Kosench/keyed-url-shortener/internal/errors"
	"github.com/Kosench/keyed-url-shortener/internal/model"
)

type SQLURLRepository struct {
	db      *sql.DB
	q       queries
	timeout time.Duration
}

// NewURLRepository returns a store over db speaking the given dialect. Every
// call is bounded by queryTimeout on top of the caller's context.
func NewURLRepository(db *sql.DB, driver database.Driver, queryTimeout time.Duration) (URLRepository, error) {
	q, ok := dialectQueries[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	return &SQLURLRepository{
		db:      db,
		q:       q,
		timeout: queryTimeout,
	}, nil
}

func (r *SQLURLRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *SQLURLRepository) Create(ctx context.Context, entry model.URLEntry) (model.URLEntry, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	entry.IsActive = true
	entry.Clicks = 0
	entry.CreatedAt = time.Now().UTC()

	err := r.db.QueryRowContext(
		ctx,
		r.q.create,
		entry.Key,
		entry.SecretKey,
		entry.TargetURL,
		entry.CreatedAt,
	).Scan(&entry.ID)

	if errors.Is(err, sql.ErrNoRows) {
		return model.URLEntry{}, apperrors.ErrKeyConflict
	}
	if err != nil {
		return model.URLEntry{}, apperrors.NewDatabaseError("failed to create URL", err)
	}

	return entry, nil
}

func (r *SQLURLRepository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	return r.exists(ctx, r.q.existsByKey, key)
}

func (r *SQLURLRepository) ExistsBySecretKey(ctx context.Context, secretKey string) (bool, error) {
	return r.exists(ctx, r.q.existsBySecretKey, secretKey)
}

func (r *SQLURLRepository) exists(ctx context.Context, query, value string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, value).Scan(&exists); err != nil {
		return false, apperrors.NewDatabaseError("failed to check key existence", err)
	}

	return exists, nil
}

func (r *SQLURLRepository) GetBySecretKey(ctx context.Context, secretKey string) (model.URLEntry, error) {
	return r.queryEntry(ctx, "failed to get URL", r.q.getBySecretKey, secretKey)
}

func (r *SQLURLRepository) SetActive(ctx context.Context, secretKey string, active bool) (model.URLEntry, error) {
	return r.queryEntry(ctx, "failed to update URL state", r.q.setActive, active, secretKey)
}

func (r *SQLURLRepository) IncrementClicks(ctx context.Context, key string) (model.URLEntry, error) {
	return r.queryEntry(ctx, "failed to record click", r.q.incrementClicks, key)
}

// queryEntry runs a statement that yields at most one full row.
func (r *SQLURLRepository) queryEntry(ctx context.Context, failure, query string, args ...any) (model.URLEntry, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var entry model.URLEntry
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&entry.ID,
		&entry.Key,
		&entry.SecretKey,
		&entry.TargetURL,
		&entry.IsActive,
		&entry.Clicks,
		timestamp{&entry.CreatedAt},
	)

	if errors.Is(err, sql.ErrNoRows) {
		return model.URLEntry{}, apperrors.ErrURLNotFound
	}
	if err != nil {
		return model.URLEntry{}, apperrors.NewDatabaseError(failure, err)
	}

	return entry, nil
}

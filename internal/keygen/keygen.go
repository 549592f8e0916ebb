// Package keygen produces short public keys and secret administration keys.
//
// Keys are drawn uniformly at random and checked against the store until an
// unused one is found. With the default 5-character key the keyspace is
// 62^5 (about 916 million), so the loop terminates with overwhelming
// probability after one or two attempts. It is not bounded unless
// MaxAttempts is set.
package keygen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	apperrors "github.com/Kosench/keyed-url-shortener/internal/errors"
)

const (
	DefaultKeyLength    = 5
	DefaultSecretLength = 8

	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	secretSeparator = "_"
)

var alphabetLen = big.NewInt(int64(len(Alphabet)))

// ExistenceChecker reports whether a key or secret key is already stored,
// regardless of the entry's active state.
type ExistenceChecker interface {
	ExistsByKey(ctx context.Context, key string) (bool, error)
	ExistsBySecretKey(ctx context.Context, secretKey string) (bool, error)
}

// RandomKey returns length characters chosen independently and uniformly
// from Alphabet. It makes no uniqueness guarantee.
func RandomKey(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("key length must be positive, got %d", length)
	}

	key := make([]byte, length)
	for i := range key {
		idx, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("read random index: %w", err)
		}
		key[i] = Alphabet[idx.Int64()]
	}

	return string(key), nil
}

type Config struct {
	KeyLength    int
	SecretLength int
	// MaxAttempts caps the uniqueness loop. Zero means unbounded.
	MaxAttempts int
}

type Generator struct {
	store        ExistenceChecker
	keyLength    int
	secretLength int
	maxAttempts  int
}

func NewGenerator(store ExistenceChecker, cfg Config) *Generator {
	if cfg.KeyLength <= 0 {
		cfg.KeyLength = DefaultKeyLength
	}
	if cfg.SecretLength <= 0 {
		cfg.SecretLength = DefaultSecretLength
	}
	if cfg.MaxAttempts < 0 {
		cfg.MaxAttempts = 0
	}

	return &Generator{
		store:        store,
		keyLength:    cfg.KeyLength,
		secretLength: cfg.SecretLength,
		maxAttempts:  cfg.MaxAttempts,
	}
}

func (g *Generator) KeyLength() int    { return g.keyLength }
func (g *Generator) SecretLength() int { return g.secretLength }
func (g *Generator) MaxAttempts() int  { return g.maxAttempts }

// UniqueKey returns a key that no stored entry uses, active or not.
func (g *Generator) UniqueKey(ctx context.Context) (string, error) {
	return g.generate(ctx, func() (string, error) {
		return RandomKey(g.keyLength)
	}, g.store.ExistsByKey)
}

// SecretKey returns "{key}_{suffix}" where suffix is a fresh random string,
// retrying until no stored entry uses the result.
func (g *Generator) SecretKey(ctx context.Context, key string) (string, error) {
	return g.generate(ctx, func() (string, error) {
		suffix, err := RandomKey(g.secretLength)
		if err != nil {
			return "", err
		}
		return key + secretSeparator + suffix, nil
	}, g.store.ExistsBySecretKey)
}

func (g *Generator) generate(
	ctx context.Context,
	candidate func() (string, error),
	exists func(context.Context, string) (bool, error),
) (string, error) {
	for attempt := 1; g.maxAttempts == 0 || attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		key, err := candidate()
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("check key existence: %w", err)
		}
		if !taken {
			return key, nil
		}
	}

	return "", apperrors.NewBusinessError(
		apperrors.CodeKeyspaceExhausted,
		"failed to generate a unique key",
		fmt.Errorf("gave up after %d attempts", g.maxAttempts),
	)
}

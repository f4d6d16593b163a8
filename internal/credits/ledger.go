// Package credits tracks per-user generation credits in Redis.
package credits

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ErrInsufficientCredits is returned when a deduction would go below zero.
var ErrInsufficientCredits = errors.New("insufficient credits")

// CostPerImage is the number of credits one generation consumes.
const CostPerImage = 1

// deductScript decrements the balance only when it covers the amount.
var deductScript = redis.NewScript(`
	local balance = tonumber(redis.call('GET', KEYS[1]) or '0')
	local amount = tonumber(ARGV[1])
	if balance < amount then
		return -1
	end
	return redis.call('DECRBY', KEYS[1], amount)
`)

// Ledger stores balances as integer keys.
type Ledger struct {
	rdb    redis.UniversalClient
	prefix string
}

// New creates a ledger on an existing Redis client.
func New(rdb redis.UniversalClient) *Ledger {
	return &Ledger{rdb: rdb, prefix: "headshot:credits:"}
}

// NewFromURL connects to the Redis instance at url and verifies the connection.
func NewFromURL(ctx context.Context, url string) (*Ledger, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(rdb), nil
}

func (l *Ledger) key(userID string) string {
	return l.prefix + userID
}

// Balance returns the user's credits. Unknown users have zero.
func (l *Ledger) Balance(ctx context.Context, userID string) (int64, error) {
	v, err := l.rdb.Get(ctx, l.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance %q: %w", v, err)
	}
	return n, nil
}

// HasCredits reports whether the user can pay for one image.
func (l *Ledger) HasCredits(ctx context.Context, userID string) (bool, error) {
	n, err := l.Balance(ctx, userID)
	if err != nil {
		return false, err
	}
	return n >= CostPerImage, nil
}

// Deduct atomically removes amount credits and returns the new balance.
// The balance is left unchanged when it does not cover amount.
func (l *Ledger) Deduct(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("deduct: amount must be positive, got %d", amount)
	}
	n, err := deductScript.Run(ctx, l.rdb, []string{l.key(userID)}, amount).Int64()
	if err != nil {
		return 0, fmt.Errorf("deduct: %w", err)
	}
	if n < 0 {
		return 0, ErrInsufficientCredits
	}
	return n, nil
}

// Grant adds amount credits and returns the new balance.
func (l *Ledger) Grant(ctx context.Context, userID string, amount int64) (int64, error) {
	n, err := l.rdb.IncrBy(ctx, l.key(userID), amount).Result()
	if err != nil {
		return 0, fmt.Errorf("grant: %w", err)
	}
	return n, nil
}

// Close releases the Redis client.
func (l *Ledger) Close() error {
	return l.rdb.Close()
}

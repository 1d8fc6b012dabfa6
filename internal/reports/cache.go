package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/financo-app/financo/internal/ledger"
)

const (
	cacheVersionKey = "reports:version"
	bumpChannel     = "ledger.bump"
)

// Cache wraps Redis based caching with versioning controls. A nil Cache or
// nil client degrades to pass-through: loaders run on every call.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	if c == nil || c.client == nil {
		return strings.Join(parts, ":"), nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	joined := strings.Join(parts, ":")
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("reports: cache loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached report by incrementing the global version
// and publishing the new value for other instances.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation subscribes to version bump notifications.
func (c *Cache) ListenForInvalidation(ctx context.Context, channel string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if channel == "" {
		channel = bumpChannel
	}
	pubsub := c.client.Subscribe(ctx, channel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg.Payload != "" {
					if ver, err := strconv.ParseInt(msg.Payload, 10, 64); err == nil {
						_ = c.client.Set(ctx, cacheVersionKey, ver, 0).Err()
						continue
					}
				}
				_ = c.client.Incr(ctx, cacheVersionKey).Err()
			}
		}
	}()
	return nil
}

func keyDRE(companyID int64, period ledger.Period, costCenterID *int64) []string {
	return []string{"reports", "dre", formatInt(companyID), periodToken(period), optionalToken(costCenterID)}
}

func keyConsolidated(companyIDs []int64, period ledger.Period) []string {
	parts := make([]string, len(companyIDs))
	for i, id := range companyIDs {
		parts[i] = formatInt(id)
	}
	return []string{"reports", "dre_consol", strings.Join(parts, ","), periodToken(period)}
}

func keyComparison(companyID int64, periodA, periodB ledger.Period, costCenterID *int64) []string {
	return []string{"reports", "dre_comp", formatInt(companyID), periodToken(periodA), periodToken(periodB), optionalToken(costCenterID)}
}

func keyCashFlow(companyID, bankAccountID *int64, period ledger.Period, consolidated bool, opening decimal.Decimal) []string {
	token := "0"
	if consolidated {
		token = "1"
	}
	return []string{"reports", "cashflow", optionalToken(companyID), optionalToken(bankAccountID), periodToken(period), token, opening.String()}
}

func keyAccrualCash(companyID int64, period ledger.Period, bankAccountID *int64, opening decimal.Decimal) []string {
	return []string{"reports", "dre_vs_cash", formatInt(companyID), periodToken(period), optionalToken(bankAccountID), opening.String()}
}

func periodToken(p ledger.Period) string {
	return p.Start.Format("2006-01-02") + "_" + p.End.Format("2006-01-02")
}

func optionalToken(id *int64) string {
	if id == nil {
		return "-"
	}
	return formatInt(*id)
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dcf_valuation/pkg/core/marketdata"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QuoteCache caches fetched market data per ticker and UTC day so repeated
// UI interactions do not hammer the provider.
// Hybrid: DB (primary) + file system (fallback/local).
type QuoteCache struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewQuoteCache creates a cache instance. If pool is nil, it falls back to a
// file-based cache in dir (defaulting to .cache/marketdata/quotes).
func NewQuoteCache(pool *pgxpool.Pool, dir string) *QuoteCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "marketdata", "quotes")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check QuoteCache dir: %v\n", err)
		}
	}
	return &QuoteCache{pool: pool, fileDir: dir}
}

// Get returns the cached market data for a ticker on a given UTC day, or
// (nil, nil) on a miss.
func (c *QuoteCache) Get(ctx context.Context, ticker string, day time.Time) (*marketdata.MarketData, error) {
	key := c.key(ticker, day)

	if c.pool != nil {
		query := `
			SELECT data
			FROM market_quotes
			WHERE ticker = $1 AND quote_date = $2
			LIMIT 1
		`
		var dataJSON []byte
		err := c.pool.QueryRow(ctx, query, strings.ToUpper(ticker), day.UTC().Format("2006-01-02")).Scan(&dataJSON)
		if err != nil {
			return nil, nil // cache miss
		}
		var data marketdata.MarketData
		if err := json.Unmarshal(dataJSON, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached quote: %w", err)
		}
		return &data, nil
	}

	if c.fileDir != "" {
		raw, err := os.ReadFile(filepath.Join(c.fileDir, key+".json"))
		if err != nil {
			return nil, nil
		}
		var data marketdata.MarketData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, err
		}
		return &data, nil
	}

	return nil, nil
}

// Save stores fetched market data under its ticker and fetch day.
func (c *QuoteCache) Save(ctx context.Context, data *marketdata.MarketData) error {
	dataJSON, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	if c.pool != nil {
		query := `
			INSERT INTO market_quotes (ticker, quote_date, data)
			VALUES ($1, $2, $3)
			ON CONFLICT (ticker, quote_date)
			DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
		`
		_, err = c.pool.Exec(ctx, query, strings.ToUpper(data.Ticker), data.AsOf.UTC().Format("2006-01-02"), dataJSON)
		if err != nil {
			return fmt.Errorf("failed to save quote to db: %w", err)
		}
		return nil
	}

	if c.fileDir != "" {
		key := c.key(data.Ticker, data.AsOf)
		if err := os.WriteFile(filepath.Join(c.fileDir, key+".json"), dataJSON, 0644); err != nil {
			return fmt.Errorf("failed to save quote to file cache: %w", err)
		}
	}

	return nil
}

func (c *QuoteCache) key(ticker string, day time.Time) string {
	return fmt.Sprintf("%s_%s", strings.ToUpper(ticker), day.UTC().Format("2006-01-02"))
}

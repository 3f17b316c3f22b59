package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"investimmo-bot/models"
)

const listingColumns = 12

// PostgresWriter persists scored listings to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS scored_listings (
			id            SERIAL PRIMARY KEY,
			listing_id    TEXT          NOT NULL,
			source        VARCHAR(50)   NOT NULL,
			city          TEXT          NOT NULL DEFAULT '',
			title         TEXT          NOT NULL,
			price         NUMERIC(12,2) NOT NULL DEFAULT 0,
			surface       NUMERIC(8,2)  NOT NULL DEFAULT 0,
			price_per_m2  NUMERIC(10,2) NOT NULL DEFAULT 0,
			discount_pct  NUMERIC(6,1)  NOT NULL DEFAULT 0,
			yield_pct     NUMERIC(6,2)  NOT NULL DEFAULT 0,
			url           TEXT          UNIQUE NOT NULL,
			image_url     TEXT          NOT NULL DEFAULT '',
			scraped_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_scored_listings_city  ON scored_listings(city);
		CREATE INDEX IF NOT EXISTS idx_scored_listings_yield ON scored_listings(yield_pct);
	`)
	return err
}

// Write batch-upserts scored listings. A listing already stored under the
// same URL gets its price and scores refreshed.
func (pw *PostgresWriter) Write(ctx context.Context, listings []*models.Listing) error {
	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.upsertBatch(ctx, listings[i:end]); err != nil {
			return fmt.Errorf("postgres: write: %w", err)
		}
	}
	return nil
}

func (pw *PostgresWriter) upsertBatch(ctx context.Context, batch []*models.Listing) error {
	query, args := upsertQuery(batch)
	_, err := pw.db.ExecContext(ctx, query, args...)
	return err
}

func upsertQuery(batch []*models.Listing) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*listingColumns)

	for idx, l := range batch {
		base := idx * listingColumns
		placeholders := make([]string, listingColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.ID, l.Source, l.City, l.Title, l.Price, l.Surface,
			l.PricePerM2, l.Discount, l.Yield, l.URL, l.ImageURL, l.ScrapedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO scored_listings
			(listing_id, source, city, title, price, surface, price_per_m2, discount_pct, yield_pct, url, image_url, scraped_at)
		VALUES %s
		ON CONFLICT (url) DO UPDATE SET
			price        = EXCLUDED.price,
			surface      = EXCLUDED.surface,
			price_per_m2 = EXCLUDED.price_per_m2,
			discount_pct = EXCLUDED.discount_pct,
			yield_pct    = EXCLUDED.yield_pct,
			scraped_at   = EXCLUDED.scraped_at
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchTop returns the n stored listings with the highest yield.
func (pw *PostgresWriter) FetchTop(ctx context.Context, n int) ([]*models.Listing, error) {
	rows, err := pw.db.QueryContext(ctx, `
		SELECT listing_id, source, city, title, price, surface, price_per_m2,
		       discount_pct, yield_pct, url, image_url, scraped_at
		FROM scored_listings
		ORDER BY yield_pct DESC, discount_pct DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch top: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		if err := rows.Scan(
			&l.ID, &l.Source, &l.City, &l.Title, &l.Price, &l.Surface, &l.PricePerM2,
			&l.Discount, &l.Yield, &l.URL, &l.ImageURL, &l.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

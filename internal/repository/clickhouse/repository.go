package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/paystream/merchant-analytics/internal/domain"
	"github.com/paystream/merchant-analytics/internal/repository"
)

// Repository implements EventRepository for ClickHouse
type Repository struct {
	client *Client
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
	}
}

// InitSchema creates the merchant_events table if it does not exist.
// Uniqueness of event_id is enforced by the pre-insert existence check in the
// ingestion pipeline, not by the engine.
func (r *Repository) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS merchant_events (
		event_id String,
		merchant_id Nullable(String),
		event_timestamp Nullable(DateTime64(6, 'UTC')),
		product Nullable(String),
		event_type Nullable(String),
		amount Decimal(15, 2),
		status Nullable(String),
		channel Nullable(String),
		region Nullable(String),
		merchant_tier Nullable(String),
		INDEX idx_merchant_id merchant_id TYPE bloom_filter GRANULARITY 4
	) ENGINE = MergeTree
	PRIMARY KEY (event_id)
	ORDER BY (event_id)
	SETTINGS index_granularity = 8192
	`

	if err := r.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create merchant_events table: %w", err)
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// Truncate removes all stored events
func (r *Repository) Truncate(ctx context.Context) error {
	if err := r.client.Conn().Exec(ctx, "TRUNCATE TABLE IF EXISTS merchant_events"); err != nil {
		return fmt.Errorf("failed to truncate merchant_events: %w", err)
	}
	return nil
}

// HasEvents reports whether the table holds at least one row
func (r *Repository) HasEvents(ctx context.Context) (bool, error) {
	var count uint64
	row := r.client.Conn().QueryRow(ctx, "SELECT count() FROM merchant_events")
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count events: %w", err)
	}
	return count > 0, nil
}

// EventExists reports whether an event with the given ID is already stored
func (r *Repository) EventExists(ctx context.Context, eventID string) (bool, error) {
	var count uint64
	row := r.client.Conn().QueryRow(ctx,
		"SELECT count() FROM merchant_events WHERE event_id = ?", eventID)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check event existence: %w", err)
	}
	return count > 0, nil
}

// InsertBatch inserts a batch of events into ClickHouse
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO merchant_events")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	insertedCount := 0
	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.MerchantID,
			event.EventTimestamp,
			event.Product,
			event.EventType,
			event.Amount,
			event.Status,
			event.Channel,
			event.Region,
			event.MerchantTier,
		)

		if err != nil {
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
		insertedCount++
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return insertedCount, nil
}

// TopMerchant returns the merchant with the highest total successful volume.
// Returns nil when no qualifying rows exist.
func (r *Repository) TopMerchant(ctx context.Context) (*repository.MerchantVolume, error) {
	query := `
		SELECT
			assumeNotNull(merchant_id) AS merchant_id,
			sum(amount) AS total_volume
		FROM merchant_events
		WHERE status = 'SUCCESS'
			AND merchant_id IS NOT NULL
			AND amount IS NOT NULL
		GROUP BY merchant_id
		ORDER BY total_volume DESC, merchant_id ASC
		LIMIT 1
	`

	rows, err := r.client.Conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query top merchant: %w", err)
	}
	defer r.closeRows(rows)

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error reading top merchant row: %w", err)
		}
		return nil, nil
	}

	var result repository.MerchantVolume
	if err := rows.Scan(&result.MerchantID, &result.TotalVolume); err != nil {
		return nil, fmt.Errorf("failed to scan top merchant row: %w", err)
	}

	return &result, nil
}

// MonthlyActiveMerchants returns the distinct count of merchants with at
// least one successful event per calendar month, ordered chronologically.
func (r *Repository) MonthlyActiveMerchants(ctx context.Context) ([]repository.MonthlyCount, error) {
	query := `
		SELECT
			formatDateTime(assumeNotNull(event_timestamp), '%Y-%m') AS month,
			uniqExact(merchant_id) AS merchant_count
		FROM merchant_events
		WHERE status = 'SUCCESS'
			AND merchant_id IS NOT NULL
			AND event_timestamp IS NOT NULL
		GROUP BY month
		ORDER BY month ASC
	`

	rows, err := r.client.Conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly active merchants: %w", err)
	}
	defer r.closeRows(rows)

	var results []repository.MonthlyCount
	for rows.Next() {
		var mc repository.MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.MerchantCount); err != nil {
			return nil, fmt.Errorf("failed to scan monthly count row: %w", err)
		}
		results = append(results, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly count rows: %w", err)
	}

	return results, nil
}

// ProductAdoption returns the distinct merchant count per product across all
// statuses, ordered by count descending.
func (r *Repository) ProductAdoption(ctx context.Context) ([]repository.ProductCount, error) {
	query := `
		SELECT
			assumeNotNull(product) AS product,
			uniqExact(merchant_id) AS merchant_count
		FROM merchant_events
		WHERE product IS NOT NULL
			AND merchant_id IS NOT NULL
		GROUP BY product
		ORDER BY merchant_count DESC, product ASC
	`

	rows, err := r.client.Conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query product adoption: %w", err)
	}
	defer r.closeRows(rows)

	var results []repository.ProductCount
	for rows.Next() {
		var pc repository.ProductCount
		if err := rows.Scan(&pc.Product, &pc.MerchantCount); err != nil {
			return nil, fmt.Errorf("failed to scan product count row: %w", err)
		}
		results = append(results, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product count rows: %w", err)
	}

	return results, nil
}

// TierFunnel returns the distinct successful merchant count for each
// recognized tier. Counts are independent per tier.
func (r *Repository) TierFunnel(ctx context.Context) (*repository.TierCounts, error) {
	query := `
		SELECT
			uniqExactIf(merchant_id, merchant_tier = 'STARTER') AS tier_starter,
			uniqExactIf(merchant_id, merchant_tier = 'VERIFIED') AS tier_verified,
			uniqExactIf(merchant_id, merchant_tier = 'PREMIUM') AS tier_premium
		FROM merchant_events
		WHERE status = 'SUCCESS'
			AND merchant_id IS NOT NULL
	`

	var counts repository.TierCounts
	row := r.client.Conn().QueryRow(ctx, query)
	if err := row.Scan(&counts.Starter, &counts.Verified, &counts.Premium); err != nil {
		return nil, fmt.Errorf("failed to query tier funnel: %w", err)
	}

	return &counts, nil
}

// ProductOutcomes returns per-product FAILED and SUCCESS counts, considering
// only events whose status is exactly FAILED or SUCCESS.
func (r *Repository) ProductOutcomes(ctx context.Context) ([]repository.ProductOutcome, error) {
	query := `
		SELECT
			assumeNotNull(product) AS product,
			countIf(status = 'FAILED') AS failed_count,
			countIf(status = 'SUCCESS') AS success_count
		FROM merchant_events
		WHERE product IS NOT NULL
			AND status IN ('SUCCESS', 'FAILED')
		GROUP BY product
	`

	rows, err := r.client.Conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query product outcomes: %w", err)
	}
	defer r.closeRows(rows)

	var results []repository.ProductOutcome
	for rows.Next() {
		var po repository.ProductOutcome
		if err := rows.Scan(&po.Product, &po.FailedCount, &po.SuccessCount); err != nil {
			return nil, fmt.Errorf("failed to scan product outcome row: %w", err)
		}
		results = append(results, po)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product outcome rows: %w", err)
	}

	return results, nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

func (r *Repository) closeRows(rows driver.Rows) {
	if err := rows.Close(); err != nil {
		r.log.Error("Failed to close rows", zap.Error(err))
	}
}

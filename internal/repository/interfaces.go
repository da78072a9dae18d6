package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/paystream/merchant-analytics/internal/domain"
)

// MerchantVolume is the summed successful transaction volume for one merchant.
type MerchantVolume struct {
	MerchantID  string
	TotalVolume decimal.Decimal
}

// MonthlyCount is the distinct merchant count for one calendar month (YYYY-MM).
type MonthlyCount struct {
	Month         string
	MerchantCount uint64
}

// ProductCount is the distinct merchant count for one product.
type ProductCount struct {
	Product       string
	MerchantCount uint64
}

// TierCounts holds the distinct merchant count per KYC tier. The counts are
// independent per tier, not cumulative funnel stages.
type TierCounts struct {
	Starter  uint64
	Verified uint64
	Premium  uint64
}

// ProductOutcome holds per-product FAILED and SUCCESS event counts.
type ProductOutcome struct {
	Product      string
	FailedCount  uint64
	SuccessCount uint64
}

// EventRepository defines the interface for event storage operations
type EventRepository interface {
	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Truncate removes all stored events
	Truncate(ctx context.Context) error

	// HasEvents reports whether at least one event is stored
	HasEvents(ctx context.Context) (bool, error)

	// EventExists reports whether an event with the given ID is already stored
	EventExists(ctx context.Context, eventID string) (bool, error)

	// InsertBatch inserts a batch of events in a single storage operation
	InsertBatch(ctx context.Context, events []*domain.Event) (int, error)

	// TopMerchant returns the merchant with the highest successful volume,
	// or nil when no qualifying rows exist. Ties resolve to the lowest
	// merchant_id.
	TopMerchant(ctx context.Context) (*MerchantVolume, error)

	// MonthlyActiveMerchants returns distinct successful merchants per
	// calendar month, ordered by month ascending.
	MonthlyActiveMerchants(ctx context.Context) ([]MonthlyCount, error)

	// ProductAdoption returns distinct merchants per product across all
	// statuses, ordered by count descending.
	ProductAdoption(ctx context.Context) ([]ProductCount, error)

	// TierFunnel returns distinct successful merchants per recognized tier.
	TierFunnel(ctx context.Context) (*TierCounts, error)

	// ProductOutcomes returns per-product FAILED/SUCCESS counts, considering
	// only events whose status is exactly FAILED or SUCCESS.
	ProductOutcomes(ctx context.Context) ([]ProductOutcome, error)

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}

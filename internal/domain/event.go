package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event represents a single merchant transaction event stored in ClickHouse.
// Pointer fields map to Nullable columns; a nil pointer is stored as NULL.
type Event struct {
	EventID        string          `ch:"event_id"`
	MerchantID     *string         `ch:"merchant_id"`
	EventTimestamp *time.Time      `ch:"event_timestamp"`
	Product        *string         `ch:"product"`
	EventType      *string         `ch:"event_type"`
	Amount         decimal.Decimal `ch:"amount"`
	Status         *string         `ch:"status"`
	Channel        *string         `ch:"channel"`
	Region         *string         `ch:"region"`
	MerchantTier   *string         `ch:"merchant_tier"`
}

// Recognized status values. Other values are stored as-is and pass through
// unfiltered where a query does not constrain status.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusPending = "PENDING"
)

// Recognized merchant tiers.
const (
	TierStarter  = "STARTER"
	TierVerified = "VERIFIED"
	TierPremium  = "PREMIUM"
)

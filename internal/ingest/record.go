package ingest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/paystream/merchant-analytics/internal/domain"
)

// csvColumns is the expected header set. Columns may appear in any order;
// missing columns default to the empty string.
var csvColumns = []string{
	"event_id",
	"merchant_id",
	"event_timestamp",
	"product",
	"event_type",
	"amount",
	"status",
	"channel",
	"region",
	"merchant_tier",
}

// buildEvent normalizes one CSV row into a domain event. The caller has
// already validated eventID as non-empty and non-duplicate. An absent amount
// defaults to 0.00; a present but unparseable amount fails the whole row.
// All other empty fields become NULL.
func buildEvent(eventID, merchantID string, row map[string]string) (*domain.Event, error) {
	amount := decimal.Zero
	if raw := strings.TrimSpace(row["amount"]); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", raw, err)
		}
		amount = parsed
	}

	return &domain.Event{
		EventID:        eventID,
		MerchantID:     nullable(merchantID),
		EventTimestamp: ParseTimestamp(row["event_timestamp"]),
		Product:        nullable(row["product"]),
		EventType:      nullable(row["event_type"]),
		Amount:         amount,
		Status:         nullable(row["status"]),
		Channel:        nullable(row["channel"]),
		Region:         nullable(row["region"]),
		MerchantTier:   nullable(row["merchant_tier"]),
	}, nil
}

// nullable converts an empty string to a NULL column value.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

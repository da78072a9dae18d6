package service

import (
	"context"

	"github.com/paystream/merchant-analytics/internal/dto"
)

// AnalyticsServicer defines the interface for analytics read operations
type AnalyticsServicer interface {
	GetTopMerchant(ctx context.Context) (*dto.TopMerchantResponse, error)
	GetMonthlyActiveMerchants(ctx context.Context) (map[string]uint64, error)
	GetProductAdoption(ctx context.Context) (map[string]uint64, error)
	GetKYCFunnel(ctx context.Context) (*dto.KYCFunnelResponse, error)
	GetFailureRates(ctx context.Context) ([]dto.FailureRateEntry, error)
	Ping(ctx context.Context) error
}

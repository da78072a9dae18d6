package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/paystream/merchant-analytics/internal/dto"
	"github.com/paystream/merchant-analytics/internal/repository"
)

// AnalyticsService computes read-only aggregates over the stored events.
// Every call is stateless and operates on whatever is currently persisted.
// Storage failures are returned as errors, never coerced into zero results;
// a well-formed zero result means the store genuinely holds no matching data.
type AnalyticsService struct {
	repository repository.EventRepository
	log        *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo repository.EventRepository, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		repository: repo,
		log:        log,
	}
}

// GetTopMerchant returns the merchant with the highest total successful
// transaction volume, rounded to 2 decimal places. When no qualifying rows
// exist the merchant ID is null and the volume is 0.0.
func (s *AnalyticsService) GetTopMerchant(ctx context.Context) (*dto.TopMerchantResponse, error) {
	result, err := s.repository.TopMerchant(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get top merchant: %w", err)
	}

	if result == nil {
		return &dto.TopMerchantResponse{MerchantID: nil, TotalVolume: 0.0}, nil
	}

	volume, _ := result.TotalVolume.Round(2).Float64()

	s.log.Info("Top merchant computed",
		zap.String("merchant_id", result.MerchantID),
		zap.Float64("total_volume", volume))

	return &dto.TopMerchantResponse{
		MerchantID:  &result.MerchantID,
		TotalVolume: volume,
	}, nil
}

// GetMonthlyActiveMerchants returns the count of unique merchants with at
// least one successful event per calendar month, keyed by YYYY-MM.
func (s *AnalyticsService) GetMonthlyActiveMerchants(ctx context.Context) (map[string]uint64, error) {
	counts, err := s.repository.MonthlyActiveMerchants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly active merchants: %w", err)
	}

	result := make(map[string]uint64, len(counts))
	for _, mc := range counts {
		result[mc.Month] = mc.MerchantCount
	}

	return result, nil
}

// GetProductAdoption returns the count of unique merchants per product.
// Unlike the other aggregates this applies no status filter: failed and
// pending events count toward adoption too.
func (s *AnalyticsService) GetProductAdoption(ctx context.Context) (map[string]uint64, error) {
	counts, err := s.repository.ProductAdoption(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get product adoption: %w", err)
	}

	result := make(map[string]uint64, len(counts))
	for _, pc := range counts {
		result[pc.Product] = pc.MerchantCount
	}

	return result, nil
}

// GetKYCFunnel returns distinct successful merchant counts for the three
// fixed KYC tiers.
func (s *AnalyticsService) GetKYCFunnel(ctx context.Context) (*dto.KYCFunnelResponse, error) {
	counts, err := s.repository.TierFunnel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get kyc funnel: %w", err)
	}

	return &dto.KYCFunnelResponse{
		TierStarter:  counts.Starter,
		TierVerified: counts.Verified,
		TierPremium:  counts.Premium,
	}, nil
}

// GetFailureRates returns the failure rate per product as
// FAILED / (FAILED + SUCCESS) * 100, rounded to 1 decimal place and sorted
// by rate descending. PENDING and null statuses are excluded entirely;
// products with no SUCCESS or FAILED events are omitted. Ties sort by
// product name ascending for determinism.
func (s *AnalyticsService) GetFailureRates(ctx context.Context) ([]dto.FailureRateEntry, error) {
	outcomes, err := s.repository.ProductOutcomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get failure rates: %w", err)
	}

	rates := make([]dto.FailureRateEntry, 0, len(outcomes))
	for _, o := range outcomes {
		total := o.FailedCount + o.SuccessCount
		if total == 0 {
			continue
		}

		rate := float64(o.FailedCount) / float64(total) * 100
		rates = append(rates, dto.FailureRateEntry{
			Product:     o.Product,
			FailureRate: math.Round(rate*10) / 10,
		})
	}

	sort.Slice(rates, func(i, j int) bool {
		if rates[i].FailureRate != rates[j].FailureRate {
			return rates[i].FailureRate > rates[j].FailureRate
		}
		return rates[i].Product < rates[j].Product
	})

	return rates, nil
}

// Ping checks whether the underlying event store is reachable
func (s *AnalyticsService) Ping(ctx context.Context) error {
	return s.repository.Ping(ctx)
}

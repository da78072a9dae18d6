package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"service_unavailable"`
	Message string `json:"message,omitempty" example:"failed to query event store"`
}

// TopMerchantResponse represents the merchant with the highest total
// successful transaction volume. MerchantID is null when no qualifying
// events exist.
type TopMerchantResponse struct {
	MerchantID  *string `json:"merchant_id" example:"merchant_042"`
	TotalVolume float64 `json:"total_volume" example:"1250.50"`
}

// KYCFunnelResponse represents distinct successful merchant counts per KYC
// tier. Counts are independent per tier, not cumulative stages.
type KYCFunnelResponse struct {
	TierStarter  uint64 `json:"tier_starter" example:"12"`
	TierVerified uint64 `json:"tier_verified" example:"7"`
	TierPremium  uint64 `json:"tier_premium" example:"3"`
}

// FailureRateEntry represents the failure rate for a single product as a
// percentage rounded to one decimal place.
type FailureRateEntry struct {
	Product     string  `json:"product" example:"POS_TERMINAL"`
	FailureRate float64 `json:"failure_rate" example:"30.0"`
}

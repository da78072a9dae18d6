package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/paystream/merchant-analytics/internal/dto"
)

// MockAnalyticsService is a mock implementation of service.AnalyticsServicer
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetTopMerchant(ctx context.Context) (*dto.TopMerchantResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TopMerchantResponse), args.Error(1)
}

func (m *MockAnalyticsService) GetMonthlyActiveMerchants(ctx context.Context) (map[string]uint64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]uint64), args.Error(1)
}

func (m *MockAnalyticsService) GetProductAdoption(ctx context.Context) (map[string]uint64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]uint64), args.Error(1)
}

func (m *MockAnalyticsService) GetKYCFunnel(ctx context.Context) (*dto.KYCFunnelResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.KYCFunnelResponse), args.Error(1)
}

func (m *MockAnalyticsService) GetFailureRates(ctx context.Context) ([]dto.FailureRateEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.FailureRateEntry), args.Error(1)
}

func (m *MockAnalyticsService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func performRequest(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandler_HealthCheck_OK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockAnalyticsService)
	h := NewHandler(mockService, zap.NewNop())

	mockService.On("Ping", mock.Anything).Return(nil)

	w := performRequest(h, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHandler_HealthCheck_StoreDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockAnalyticsService)
	h := NewHandler(mockService, zap.NewNop())

	mockService.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	w := performRequest(h, http.MethodGet, "/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandler_GetTopMerchant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockAnalyticsService)
	h := NewHandler(mockService, zap.NewNop())

	merchantID := "merchant_042"
	mockService.On("GetTopMerchant", mock.Anything).Return(&dto.TopMerchantResponse{
		MerchantID:  &merchantID,
		TotalVolume: 1250.5,
	}, nil)

	w := performRequest(h, http.MethodGet, "/analytics/top-merchant")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"merchant_id":"merchant_042","total_volume":1250.5}`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestHandler_GetTopMerchant_NoData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockAnalyticsService)
	h := NewHandler(mockService, zap.NewNop())

	mockService.On("GetTopMerchant", mock.Anything).Return(&dto.TopMerchantResponse{
		MerchantID:  nil,
		TotalVolume: 0.0,
	}, nil)

	w := performRequest(h, http.MethodGet, "/analytics/top-merchant")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"merchant_id":null,"total_volume":0}`, w.Body.String())
}

func TestHandler_GetMonthlyActiveMerchants(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockAnalyticsService)
	h := NewHandler(mockService, zap.NewNop())

	mockService.On("GetMonthlyActiveMerchants", mock.Anything).Return(map[string]uint64{
		"2024-01": 3,
		"2024-02": 5,
	}, nil)

	w := performRequest(h, http.MethodGet, "/analytics/monthly-active-merchants")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"2024-01":3,"2024-02":5}`, w.Body.String())
}

func TestHandler_GetProductAdoption(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockAnalyticsService)
	h := NewHandler(mockService, zap.NewNop())

	mockService.On("GetProductAdoption", mock.Anything).Return(map[string]uint64{
		"P1": 2,
		"P2": 1,
	}, nil)

	w := performRequest(h, http.MethodGet, "/analytics/product-adoption")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"P1":2,"P2":1}`, w.Body.String())
}

func TestHandler_GetKYCFunnel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockAnalyticsService)
	h := NewHandler(mockService, zap.NewNop())

	mockService.On("GetKYCFunnel", mock.Anything).Return(&dto.KYCFunnelResponse{
		TierStarter: 1,
		TierPremium: 1,
	}, nil)

	w := performRequest(h, http.MethodGet, "/analytics/kyc-funnel")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tier_starter":1,"tier_verified":0,"tier_premium":1}`, w.Body.String())
}

func TestHandler_GetFailureRates_PreservesOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockAnalyticsService)
	h := NewHandler(mockService, zap.NewNop())

	mockService.On("GetFailureRates", mock.Anything).Return([]dto.FailureRateEntry{
		{Product: "P2", FailureRate: 50.0},
		{Product: "P1", FailureRate: 30.0},
	}, nil)

	w := performRequest(h, http.MethodGet, "/analytics/failure-rates")

	assert.Equal(t, http.StatusOK, w.Code)

	var entries []dto.FailureRateEntry
	err := json.Unmarshal(w.Body.Bytes(), &entries)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "P2", entries[0].Product)
	assert.Equal(t, "P1", entries[1].Product)
}

func TestHandler_ServiceFailureReturns503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockAnalyticsService)
	h := NewHandler(mockService, zap.NewNop())

	mockService.On("GetTopMerchant", mock.Anything).Return(nil, errors.New("store unavailable"))

	w := performRequest(h, http.MethodGet, "/analytics/top-merchant")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp dto.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "service_unavailable", resp.Error)
}

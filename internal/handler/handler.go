package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/paystream/merchant-analytics/docs"
	"github.com/paystream/merchant-analytics/internal/dto"
	"github.com/paystream/merchant-analytics/internal/service"
)

type Handler struct {
	analyticsService service.AnalyticsServicer
	router           *gin.Engine
	log              *zap.Logger
}

func NewHandler(analyticsService service.AnalyticsServicer, log *zap.Logger) *Handler {
	h := &Handler{
		analyticsService: analyticsService,
		router:           gin.Default(),
		log:              log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)

	analytics := h.router.Group("/analytics")
	analytics.GET("/top-merchant", h.getTopMerchant)
	analytics.GET("/monthly-active-merchants", h.getMonthlyActiveMerchants)
	analytics.GET("/product-adoption", h.getProductAdoption)
	analytics.GET("/kyc-funnel", h.getKYCFunnel)
	analytics.GET("/failure-rates", h.getFailureRates)

	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// serviceError converts an analytics service failure into a 503 response.
// Query failures are deliberately distinguishable from empty results.
func (h *Handler) serviceError(c *gin.Context, operation string, err error) {
	h.log.Error("Analytics query failed",
		zap.String("operation", operation),
		zap.Error(err))
	c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
		Error:   "service_unavailable",
		Message: err.Error(),
	})
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Check if the service and its event store are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} dto.ErrorResponse
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	if err := h.analyticsService.Ping(c.Request.Context()); err != nil {
		h.log.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   "service_unavailable",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// getTopMerchant handles GET /analytics/top-merchant
// @Summary Top merchant by volume
// @Description Merchant with the highest total successful transaction amount
// @Tags analytics
// @Produce json
// @Success 200 {object} dto.TopMerchantResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /analytics/top-merchant [get]
func (h *Handler) getTopMerchant(c *gin.Context) {
	response, err := h.analyticsService.GetTopMerchant(c.Request.Context())
	if err != nil {
		h.serviceError(c, "top-merchant", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// getMonthlyActiveMerchants handles GET /analytics/monthly-active-merchants
// @Summary Monthly active merchants
// @Description Count of unique merchants with at least one successful event per month, keyed by YYYY-MM
// @Tags analytics
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 503 {object} dto.ErrorResponse
// @Router /analytics/monthly-active-merchants [get]
func (h *Handler) getMonthlyActiveMerchants(c *gin.Context) {
	response, err := h.analyticsService.GetMonthlyActiveMerchants(c.Request.Context())
	if err != nil {
		h.serviceError(c, "monthly-active-merchants", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// getProductAdoption handles GET /analytics/product-adoption
// @Summary Product adoption
// @Description Count of unique merchants per product, all statuses included
// @Tags analytics
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 503 {object} dto.ErrorResponse
// @Router /analytics/product-adoption [get]
func (h *Handler) getProductAdoption(c *gin.Context) {
	response, err := h.analyticsService.GetProductAdoption(c.Request.Context())
	if err != nil {
		h.serviceError(c, "product-adoption", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// getKYCFunnel handles GET /analytics/kyc-funnel
// @Summary KYC tier funnel
// @Description Distinct successful merchant counts per KYC tier
// @Tags analytics
// @Produce json
// @Success 200 {object} dto.KYCFunnelResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /analytics/kyc-funnel [get]
func (h *Handler) getKYCFunnel(c *gin.Context) {
	response, err := h.analyticsService.GetKYCFunnel(c.Request.Context())
	if err != nil {
		h.serviceError(c, "kyc-funnel", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// getFailureRates handles GET /analytics/failure-rates
// @Summary Failure rate per product
// @Description Failure percentage per product over SUCCESS and FAILED events, sorted by rate descending
// @Tags analytics
// @Produce json
// @Success 200 {array} dto.FailureRateEntry
// @Failure 503 {object} dto.ErrorResponse
// @Router /analytics/failure-rates [get]
func (h *Handler) getFailureRates(c *gin.Context) {
	response, err := h.analyticsService.GetFailureRates(c.Request.Context())
	if err != nil {
		h.serviceError(c, "failure-rates", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/spendlog/spendlog/internal/core/domain"
	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/dto"
)

// analyticsHandler handles HTTP requests for derived reporting figures.
type analyticsHandler struct {
	analyticsService portssvc.AnalyticsSvcFacade
}

func newAnalyticsHandler(as portssvc.AnalyticsSvcFacade) *analyticsHandler {
	return &analyticsHandler{analyticsService: as}
}

func registerAnalyticsRoutes(rg *gin.RouterGroup, analyticsService portssvc.AnalyticsSvcFacade) {
	h := newAnalyticsHandler(analyticsService)

	analytics := rg.Group("/analytics")
	{
		analytics.GET("/summary", h.getSummary)
		analytics.GET("/breakdown", h.getCategoryBreakdown)
		analytics.GET("/net-worth", h.getNetWorth)
		analytics.GET("/projection", h.getProjection)
		analytics.GET("/budget-report", h.getBudgetReport)
	}
}

// parsePeriod resolves the from/to query bounds, defaulting to the current
// calendar month.
func parsePeriod(c *gin.Context) (time.Time, time.Time, bool) {
	var params dto.AnalyticsPeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return time.Time{}, time.Time{}, false
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now

	if params.From != "" {
		parsed, err := time.Parse(time.RFC3339, params.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid 'from' timestamp, expected RFC 3339"})
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if params.To != "" {
		parsed, err := time.Parse(time.RFC3339, params.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid 'to' timestamp, expected RFC 3339"})
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "'to' must not be before 'from'"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// getSummary godoc
// @Summary Income, expense, net and savings rate over a period
// @Description Defaults to the current calendar month
// @Tags analytics
// @Produce json
// @Param from query string false "Period start (RFC 3339)"
// @Param to query string false "Period end (RFC 3339)"
// @Success 200 {object} dto.SummaryResponse
// @Failure 400 {object} ErrorResponse "Invalid period"
// @Security BearerAuth
// @Router /analytics/summary [get]
func (h *analyticsHandler) getSummary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	from, to, ok := parsePeriod(c)
	if !ok {
		return
	}

	summary, err := h.analyticsService.GetPeriodSummary(c.Request.Context(), userID, from, to)
	if err != nil {
		respondServiceError(c, err, "Failed to compute summary")
		return
	}
	c.JSON(http.StatusOK, dto.SummaryResponse{Summary: *summary})
}

// getCategoryBreakdown godoc
// @Summary Expense totals per category over a period
// @Tags analytics
// @Produce json
// @Param from query string false "Period start (RFC 3339)"
// @Param to query string false "Period end (RFC 3339)"
// @Success 200 {object} dto.CategoryBreakdownResponse
// @Failure 400 {object} ErrorResponse "Invalid period"
// @Security BearerAuth
// @Router /analytics/breakdown [get]
func (h *analyticsHandler) getCategoryBreakdown(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	from, to, ok := parsePeriod(c)
	if !ok {
		return
	}

	breakdown, err := h.analyticsService.GetCategoryBreakdown(c.Request.Context(), userID, from, to)
	if err != nil {
		respondServiceError(c, err, "Failed to compute breakdown")
		return
	}
	c.JSON(http.StatusOK, dto.CategoryBreakdownResponse{
		Type:       domain.FlowExpense,
		Categories: breakdown,
	})
}

// getNetWorth godoc
// @Summary Net worth decomposition
// @Description Liquid plus investments minus credit card and loan debt
// @Tags analytics
// @Produce json
// @Success 200 {object} dto.NetWorthResponse
// @Security BearerAuth
// @Router /analytics/net-worth [get]
func (h *analyticsHandler) getNetWorth(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	netWorth, loans, cards, err := h.analyticsService.GetNetWorth(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to compute net worth")
		return
	}
	c.JSON(http.StatusOK, dto.NetWorthResponse{
		NetWorth:           *netWorth,
		Loans:              loans,
		CreditUtilizations: cards,
	})
}

// getProjection godoc
// @Summary Estimate future investment value
// @Description Without parameters, the inputs are derived from the user's investment accounts, budgets and subscriptions
// @Tags analytics
// @Produce json
// @Param principal query string false "Starting amount"
// @Param monthlyContribution query string false "Monthly contribution"
// @Param annualRatePercent query number false "Annual growth rate in percent"
// @Param years query int false "Horizon in years" default(5)
// @Success 200 {object} dto.ProjectionResponse
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Security BearerAuth
// @Router /analytics/projection [get]
func (h *analyticsHandler) getProjection(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	principalStr := c.Query("principal")
	contributionStr := c.Query("monthlyContribution")
	rateStr := c.Query("annualRatePercent")
	yearsStr := c.Query("years")

	if principalStr == "" && contributionStr == "" && rateStr == "" && yearsStr == "" {
		projection, err := h.analyticsService.DefaultInvestmentProjection(c.Request.Context(), userID)
		if err != nil {
			respondServiceError(c, err, "Failed to compute projection")
			return
		}
		c.JSON(http.StatusOK, dto.ProjectionResponse{Projection: *projection})
		return
	}

	principal := decimal.Zero
	if principalStr != "" {
		parsed, err := decimal.NewFromString(principalStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid 'principal' amount"})
			return
		}
		principal = parsed
	}
	contribution := decimal.Zero
	if contributionStr != "" {
		parsed, err := decimal.NewFromString(contributionStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid 'monthlyContribution' amount"})
			return
		}
		contribution = parsed
	}
	rate := 6.0
	if rateStr != "" {
		parsed, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid 'annualRatePercent'"})
			return
		}
		rate = parsed
	}
	years := 0
	if yearsStr != "" {
		parsed, err := strconv.Atoi(yearsStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid 'years'"})
			return
		}
		years = parsed
	}

	projection, err := h.analyticsService.ProjectInvestment(c.Request.Context(), principal, contribution, rate, years)
	if err != nil {
		respondServiceError(c, err, "Failed to compute projection")
		return
	}
	c.JSON(http.StatusOK, dto.ProjectionResponse{Projection: *projection})
}

// getBudgetReport godoc
// @Summary Spend versus budget per category over a period
// @Description Defaults to the current calendar month
// @Tags analytics
// @Produce json
// @Param from query string false "Period start (RFC 3339)"
// @Param to query string false "Period end (RFC 3339)"
// @Success 200 {object} dto.BudgetReportResponse
// @Failure 400 {object} ErrorResponse "Invalid period"
// @Security BearerAuth
// @Router /analytics/budget-report [get]
func (h *analyticsHandler) getBudgetReport(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	from, to, ok := parsePeriod(c)
	if !ok {
		return
	}

	reports, err := h.analyticsService.GetBudgetReport(c.Request.Context(), userID, from, to)
	if err != nil {
		respondServiceError(c, err, "Failed to compute budget report")
		return
	}
	c.JSON(http.StatusOK, dto.BudgetReportResponse{Reports: reports})
}

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/dto"
	"github.com/spendlog/spendlog/internal/middleware"
)

// subscriptionHandler handles HTTP requests for recurring obligations.
type subscriptionHandler struct {
	subscriptionService portssvc.SubscriptionSvcFacade
}

func newSubscriptionHandler(ss portssvc.SubscriptionSvcFacade) *subscriptionHandler {
	return &subscriptionHandler{subscriptionService: ss}
}

func registerSubscriptionRoutes(rg *gin.RouterGroup, subscriptionService portssvc.SubscriptionSvcFacade) {
	h := newSubscriptionHandler(subscriptionService)

	subscriptions := rg.Group("/subscriptions")
	{
		subscriptions.POST("", h.createSubscription)
		subscriptions.GET("", h.listSubscriptions)
		subscriptions.GET("/:id", h.getSubscription)
		subscriptions.PUT("/:id", h.updateSubscription)
		subscriptions.DELETE("/:id", h.deleteSubscription)
		subscriptions.POST("/:id/mark-paid", h.markPaid)
		subscriptions.POST("/sweep", h.runSweep)
	}
}

// createSubscription godoc
// @Summary Create a recurring obligation
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param subscription body dto.CreateSubscriptionRequest true "Subscription details"
// @Success 201 {object} dto.SubscriptionResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Security BearerAuth
// @Router /subscriptions [post]
func (h *subscriptionHandler) createSubscription(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for create subscription", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	sub, err := h.subscriptionService.CreateSubscription(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create subscription")
		return
	}
	c.JSON(http.StatusCreated, dto.ToSubscriptionResponse(sub))
}

// listSubscriptions godoc
// @Summary List the user's subscriptions
// @Tags subscriptions
// @Produce json
// @Success 200 {object} dto.ListSubscriptionsResponse
// @Security BearerAuth
// @Router /subscriptions [get]
func (h *subscriptionHandler) listSubscriptions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	subs, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list subscriptions")
		return
	}
	c.JSON(http.StatusOK, dto.ListSubscriptionsResponse{Subscriptions: dto.ToSubscriptionResponses(subs)})
}

// getSubscription godoc
// @Summary Get a subscription by ID
// @Tags subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 404 {object} ErrorResponse "Not found"
// @Security BearerAuth
// @Router /subscriptions/{id} [get]
func (h *subscriptionHandler) getSubscription(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.GetSubscriptionByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to fetch subscription")
		return
	}
	c.JSON(http.StatusOK, dto.ToSubscriptionResponse(sub))
}

// updateSubscription godoc
// @Summary Update a subscription
// @Description The next billing date can only move forward
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param subscription body dto.UpdateSubscriptionRequest true "Fields to update"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Not found"
// @Security BearerAuth
// @Router /subscriptions/{id} [put]
func (h *subscriptionHandler) updateSubscription(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for update subscription", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	sub, err := h.subscriptionService.UpdateSubscription(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "Failed to update subscription")
		return
	}
	c.JSON(http.StatusOK, dto.ToSubscriptionResponse(sub))
}

// deleteSubscription godoc
// @Summary Delete a subscription
// @Description Transactions already billed for it are kept
// @Tags subscriptions
// @Param id path string true "Subscription ID"
// @Success 204
// @Failure 404 {object} ErrorResponse "Not found"
// @Security BearerAuth
// @Router /subscriptions/{id} [delete]
func (h *subscriptionHandler) deleteSubscription(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.subscriptionService.DeleteSubscription(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondServiceError(c, err, "Failed to delete subscription")
		return
	}
	c.Status(http.StatusNoContent)
}

// markPaid godoc
// @Summary Record one billing cycle manually
// @Description Writes the billing transaction and advances the due date one cycle
// @Tags subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.MarkPaidResponse
// @Failure 404 {object} ErrorResponse "Not found"
// @Security BearerAuth
// @Router /subscriptions/{id}/mark-paid [post]
func (h *subscriptionHandler) markPaid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sub, txn, err := h.subscriptionService.MarkPaid(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to mark subscription paid")
		return
	}

	logger.Info("Subscription marked paid", slog.String("subscription_id", sub.SubscriptionID))
	resp := dto.MarkPaidResponse{Subscription: dto.ToSubscriptionResponse(sub)}
	if txn != nil {
		t := dto.ToTransactionResponse(txn)
		resp.Transaction = t
	}
	c.JSON(http.StatusOK, resp)
}

// runSweep godoc
// @Summary Bill the user's overdue auto-pay subscriptions
// @Description Bills each overdue cycle up to the catch-up cap
// @Tags subscriptions
// @Produce json
// @Success 200 {object} dto.SweepResult
// @Security BearerAuth
// @Router /subscriptions/sweep [post]
func (h *subscriptionHandler) runSweep(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	result, err := h.subscriptionService.RunAutoPaySweep(c.Request.Context(), userID, time.Now())
	if err != nil {
		respondServiceError(c, err, "Failed to run auto-pay sweep")
		return
	}
	c.JSON(http.StatusOK, result)
}

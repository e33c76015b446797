package http

import (
	"context"
	"net/http"

	"stock-inventory/internal/alerts"
	"stock-inventory/internal/lowstock"

	"github.com/gin-gonic/gin"
)

type AlertService interface {
	CheckCurrent(ctx context.Context) (lowstock.Outcome, error)
	SendTest(ctx context.Context, recipient string) (lowstock.Outcome, error)
	Status(ctx context.Context) (alerts.Status, error)
}

type AlertHandler struct {
	service AlertService
}

func NewAlertHandler(svc AlertService) *AlertHandler {
	return &AlertHandler{service: svc}
}

type testAlertRequest struct {
	Recipient string `json:"recipient" example:"buyer@example.com"`
}

type alertOutcomeResponse struct {
	Status string                 `json:"status" example:"sent"`
	Reason string                 `json:"reason,omitempty" example:"already_sent_today"`
	Error  string                 `json:"error,omitempty" example:"send low-stock alert: email quota exceeded"`
	Alert  *lowstock.AlertContent `json:"alert,omitempty"`
}

// Status godoc
// @Summary      Low-stock items and notification gate state
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  alerts.Status
// @Failure      500  {object}  errorResponse
// @Router       /alerts/low-stock [get]
func (h *AlertHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load alert status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// Trigger godoc
// @Summary      Send the daily low-stock alert if not already sent today
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  alertOutcomeResponse
// @Failure      412  {object}  alertOutcomeResponse
// @Failure      429  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Failure      502  {object}  alertOutcomeResponse
// @Failure      504  {object}  alertOutcomeResponse
// @Router       /alerts/low-stock [post]
func (h *AlertHandler) Trigger(c *gin.Context) {
	out, err := h.service.CheckCurrent(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load products"})
		return
	}

	writeOutcome(c, out)
}

// SendTest godoc
// @Summary      Send a low-stock alert now, ignoring the daily gate
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        body  body      testAlertRequest  false  "Recipient override"
// @Success      200   {object}  alertOutcomeResponse
// @Failure      400   {object}  errorResponse
// @Failure      412   {object}  alertOutcomeResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Failure      502   {object}  alertOutcomeResponse
// @Failure      504   {object}  alertOutcomeResponse
// @Router       /alerts/low-stock/test [post]
func (h *AlertHandler) SendTest(c *gin.Context) {
	var req testAlertRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	out, err := h.service.SendTest(c.Request.Context(), req.Recipient)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load products"})
		return
	}

	writeOutcome(c, out)
}

func writeOutcome(c *gin.Context, out lowstock.Outcome) {
	resp := alertOutcomeResponse{
		Status: string(out.Status),
		Reason: string(out.Reason),
		Alert:  out.Alert,
	}
	if out.Err != nil {
		resp.Error = out.Err.Error()
	}

	c.JSON(outcomeStatusCode(out), resp)
}

func outcomeStatusCode(out lowstock.Outcome) int {
	if out.Status != lowstock.StatusFailed {
		return http.StatusOK
	}
	switch out.Reason {
	case lowstock.ReasonNotConfigured:
		return http.StatusPreconditionFailed
	case lowstock.ReasonTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

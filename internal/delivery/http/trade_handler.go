package http

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"tradesim/internal/delivery/http/dto"
	"tradesim/internal/domain"
	"tradesim/internal/service"
)

// TradeHandler exposes the trade service over HTTP.
type TradeHandler struct {
	trades *service.TradeService
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(trades *service.TradeService) *TradeHandler {
	return &TradeHandler{trades: trades}
}

// Open handles POST /api/trades/open.
func (h *TradeHandler) Open(c echo.Context) error {
	var req dto.OpenTradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "invalid request body")
	}

	position, err := h.trades.Open(c.Request().Context(), service.OpenOrderRequest{
		UserID:      req.UserID,
		Symbol:      req.Symbol,
		Side:        domain.Side(req.Side),
		Margin:      req.Margin,
		Leverage:    req.Leverage,
		TakeProfit:  req.TakeProfit,
		StopLoss:    req.StopLoss,
		TargetPrice: req.TargetPrice,
	})
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return CreatedResponse(c, position)
}

// ListOpen handles GET /api/trades/active/:userId.
func (h *TradeHandler) ListOpen(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return BadRequestResponse(c, "invalid user id")
	}

	views, err := h.trades.ListOpen(c.Request().Context(), userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, views)
}

// ListPending handles GET /api/trades/pending/:userId.
func (h *TradeHandler) ListPending(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return BadRequestResponse(c, "invalid user id")
	}

	views, err := h.trades.ListPending(c.Request().Context(), userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, views)
}

// Cancel handles DELETE /api/trades/cancel/:id.
func (h *TradeHandler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "invalid position id")
	}

	if err := h.trades.Cancel(c.Request().Context(), id); err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessMessageResponse(c, "order cancelled, margin restored")
}

// Close handles DELETE /api/trades/close/:id.
func (h *TradeHandler) Close(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "invalid position id")
	}

	if err := h.trades.Close(c.Request().Context(), id); err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessMessageResponse(c, "position closed at market price")
}

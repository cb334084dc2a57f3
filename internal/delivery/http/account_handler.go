package http

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"tradesim/internal/delivery/http/dto"
	"tradesim/internal/service"
)

// AccountHandler exposes the account service over HTTP.
type AccountHandler struct {
	accounts *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create handles POST /api/users.
func (h *AccountHandler) Create(c echo.Context) error {
	var req dto.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "invalid request body")
	}

	account, err := h.accounts.Create(c.Request().Context(), req.Username, req.Premium)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return CreatedResponse(c, account)
}

// Get handles GET /api/users/:id.
func (h *AccountHandler) Get(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return BadRequestResponse(c, "invalid user id")
	}

	account, err := h.accounts.GetByID(c.Request().Context(), id)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, account)
}

// AdjustBalance handles POST /api/users/:id/balance.
func (h *AccountHandler) AdjustBalance(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return BadRequestResponse(c, "invalid user id")
	}

	var req dto.AdjustBalanceRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "invalid request body")
	}

	if err := h.accounts.AdjustBalance(c.Request().Context(), id, req.Amount); err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessMessageResponse(c, "balance updated")
}

// Leaderboard handles GET /api/users/leaderboard.
func (h *AccountHandler) Leaderboard(c echo.Context) error {
	accounts, err := h.accounts.Leaderboard(c.Request().Context())
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, accounts)
}

// ResetBalances handles POST /api/users/reset-balances.
func (h *AccountHandler) ResetBalances(c echo.Context) error {
	if err := h.accounts.ResetBalances(c.Request().Context()); err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessMessageResponse(c, "premium balances reset")
}

func parseUserID(c echo.Context) (int64, error) {
	id := c.Param("userId")
	if id == "" {
		id = c.Param("id")
	}
	return strconv.ParseInt(id, 10, 64)
}

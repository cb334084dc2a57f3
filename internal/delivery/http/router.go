package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RouterConfig holds all dependencies for routing.
type RouterConfig struct {
	TradeHandler   *TradeHandler
	AccountHandler *AccountHandler
	TickTrigger    func(ctx context.Context) bool
	DBPinger       interface{ Ping(context.Context) error }
}

// SetupRoutes configures all HTTP routes.
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		dbStatus := "healthy"
		if err := config.DBPinger.Ping(ctx); err != nil {
			dbStatus = "unhealthy"
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"service":   "tradesim",
			"database":  dbStatus,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := e.Group("/api")

	trades := api.Group("/trades")
	{
		trades.POST("/open", config.TradeHandler.Open)
		trades.GET("/active/:userId", config.TradeHandler.ListOpen)
		trades.GET("/pending/:userId", config.TradeHandler.ListPending)
		trades.DELETE("/cancel/:id", config.TradeHandler.Cancel)
		trades.DELETE("/close/:id", config.TradeHandler.Close)
	}

	users := api.Group("/users")
	{
		users.POST("", config.AccountHandler.Create)
		users.GET("/leaderboard", config.AccountHandler.Leaderboard)
		users.POST("/reset-balances", config.AccountHandler.ResetBalances)
		users.GET("/:id", config.AccountHandler.Get)
		users.POST("/:id/balance", config.AccountHandler.AdjustBalance)
	}

	// Manual settlement tick, useful in development. Reports whether the
	// tick ran or was skipped because one is already in flight.
	api.POST("/engine/tick", func(c echo.Context) error {
		if !config.TickTrigger(c.Request().Context()) {
			return c.JSON(http.StatusConflict, Response{
				Status:  "error",
				Message: "a settlement tick is already running",
			})
		}
		return SuccessMessageResponse(c, "settlement tick completed")
	})
}

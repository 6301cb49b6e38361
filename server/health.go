package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
)

func Healthz(version, commit string) echo.HandlerFunc {
	startTime := time.Now()

	return func(c *echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:        "ok",
			Version:       version,
			Commit:        commit,
			UptimeSeconds: int(time.Since(startTime).Seconds()),
		})
	}
}

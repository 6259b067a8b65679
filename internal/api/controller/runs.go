package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kisanshaktiai/market-ingestor/internal/domain/dto"
)

func (c *Controller) ListRecentRuns(ctx echo.Context) error {
	var req dto.ListRunsRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	runs, err := c.service.ListRecentRuns(ctx.Request().Context(), req.Limit)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, runs)
}

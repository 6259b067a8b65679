package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kisanshaktiai/market-ingestor/internal/domain/dto"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/store"
)

func (c *Controller) ListPrices(ctx echo.Context) error {
	var req dto.ListPricesRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	prices, err := c.service.ListPrices(ctx.Request().Context(), store.ListPricesOpts{
		GlobalCode: req.GlobalCode,
		Commodity:  req.Commodity,
		Market:     req.Market,
		SourceID:   req.SourceID,
		From:       req.From,
		To:         req.To,
		Limit:      req.Limit,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, prices)
}

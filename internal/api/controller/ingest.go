package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/domain/dto"
)

// TriggerIngest runs the scrape-normalize-upsert pipeline synchronously and
// responds with the run summary. An empty source_id means every active source.
func (c *Controller) TriggerIngest(ctx echo.Context) error {
	var req dto.TriggerIngestRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	var (
		summary *domain.RunSummary
		err     error
	)

	reqCtx := ctx.Request().Context()
	if req.SourceID != "" {
		summary, err = c.service.RunOne(reqCtx, req.SourceID)
	} else {
		summary, err = c.service.RunAll(reqCtx)
	}
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, summary)
}

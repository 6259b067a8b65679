package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (c *Controller) ListSources(ctx echo.Context) error {
	sources, err := c.service.ListSources(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, sources)
}

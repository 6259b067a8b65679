package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kisanshaktiai/market-ingestor/internal/pkg/constants"
)

type Binder struct {
	base echo.DefaultBinder
}

func NewBinder() *Binder {
	return &Binder{}
}

func (b *Binder) Bind(i interface{}, ctx echo.Context) error {
	if err := b.base.Bind(i, ctx); err != nil {
		return constants.NewCodedError(http.StatusBadRequest, err.Error())
	}

	return ctx.Validate(i)
}

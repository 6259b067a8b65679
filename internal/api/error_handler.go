package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/constants"
)

func httpErrorHandler(err error, ctx echo.Context) {
	msg := err.Error()
	code := http.StatusInternalServerError

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		msg = fmt.Sprintf("%v", httpErr.Message)
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		if codedErr, ok := e.(*constants.CodedError); ok {
			code = codedErr.Code()
			msg = codedErr.Error()
			break
		}
	}

	if ctx.Response().Committed {
		return
	}

	_ = ctx.JSON(code, domain.ErrorResponse{Message: msg, Code: code})
}

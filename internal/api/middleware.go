package api

import (
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/kisanshaktiai/market-ingestor/internal/pkg/constants"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/utils"
)

// AdminMiddleware guards mutating endpoints. The caller presents a signed
// token in the secret_token cookie whose secret claim must match the
// configured one.
func (svc *APIService) AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(constants.CookieKeySecretToken)
		if err != nil {
			return constants.ErrUnauthorized
		}

		token, err := utils.ParseAuthToken(cookie.Value)
		if err != nil {
			return err
		}

		if token.Secret != viper.GetString(constants.ViperSecretKey) {
			return constants.ErrUnauthorized
		}

		return next(ctx)
	}
}

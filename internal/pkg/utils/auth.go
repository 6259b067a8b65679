package utils

import (
	"github.com/golang-jwt/jwt"
	"github.com/spf13/viper"

	"github.com/kisanshaktiai/market-ingestor/internal/pkg/constants"
)

// AuthTokenWrapper is the claim set of the admin cookie token. Secret must
// match the configured shared secret for the token to be honored.
type AuthTokenWrapper struct {
	Secret string `json:"secret"`
	jwt.StandardClaims
}

func GenerateAuthToken(wrapper AuthTokenWrapper) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, wrapper)

	signed, err := token.SignedString([]byte(viper.GetString(constants.ViperSecretKey)))
	if err != nil {
		return "", err
	}

	return signed, nil
}

func ParseAuthToken(raw string) (*AuthTokenWrapper, error) {
	wrapper := &AuthTokenWrapper{}

	_, err := jwt.ParseWithClaims(raw, wrapper, func(*jwt.Token) (interface{}, error) {
		return []byte(viper.GetString(constants.ViperSecretKey)), nil
	})
	if err != nil {
		return nil, constants.ErrUnauthorized
	}

	return wrapper, nil
}

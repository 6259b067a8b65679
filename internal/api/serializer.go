package api

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

// SonicSerializer implements echo.JSONSerializer on top of bytedance/sonic.
type SonicSerializer struct{}

func NewSonicSerializer() *SonicSerializer {
	return &SonicSerializer{}
}

func (s *SonicSerializer) Serialize(ctx echo.Context, i interface{}, indent string) error {
	var (
		data []byte
		err  error
	)

	if indent != "" {
		data, err = sonic.MarshalIndent(i, "", indent)
	} else {
		data, err = sonic.Marshal(i)
	}
	if err != nil {
		return err
	}

	_, err = ctx.Response().Write(data)

	return err
}

func (s *SonicSerializer) Deserialize(ctx echo.Context, i interface{}) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(body, i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}

	return nil
}

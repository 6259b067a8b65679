package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/kisanshaktiai/market-ingestor/internal/api/controller"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/logger"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/metrics"
	"github.com/kisanshaktiai/market-ingestor/internal/service/ingest"
)

type APIService struct {
	router        *echo.Echo
	ingestService *ingest.Service
}

func (svc *APIService) Serve(addr string) {
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(context.Background(), err)
	}
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

func NewAPIService(ingestService *ingest.Service, m *metrics.Metrics) (*APIService, error) {
	svc := &APIService{router: echo.New(), ingestService: ingestService}

	svc.router.HideBanner = true
	svc.router.Logger.SetLevel(log.OFF)
	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.JSONSerializer = NewSonicSerializer()
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.Recover())
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	svc.router.GET("/healthz", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	svc.router.GET("/metrics", echo.WrapHandler(m.Handler()))

	api := svc.router.Group("/api/v1")
	cntrl := controller.NewController(svc.ingestService)

	prices := api.Group("/prices")
	prices.GET("/list", cntrl.ListPrices)

	sources := api.Group("/sources")
	sources.GET("/list", cntrl.ListSources)

	runs := api.Group("/runs")
	runs.GET("/recent", cntrl.ListRecentRuns)

	in := api.Group("/ingest")
	in.POST("/run", cntrl.TriggerIngest, svc.AdminMiddleware)

	return svc, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/kisanshaktiai/market-ingestor/internal/api"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/constants"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/logger"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/metrics"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/store"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/store/xpgx"
	"github.com/kisanshaktiai/market-ingestor/internal/service/ingest"
)

func main() {
	var (
		configPath string
		once       bool
	)
	flag.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flag.BoolVar(&once, "once", false, "run a single ingest cycle and exit")
	flag.Parse()

	viper.SetConfigFile(configPath)
	viper.SetEnvPrefix("MARKET_INGESTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(constants.ViperListenAddrKey, ":8080")
	viper.SetDefault(constants.ViperRequestTimeoutKey, "30s")
	viper.SetDefault(constants.ViperMaxRetriesKey, 3)
	viper.SetDefault(constants.ViperBatchSizeKey, 100)
	viper.SetDefault(constants.ViperParallelismKey, 4)

	ctx := context.Background()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnf(ctx, "read config %s: %v, relying on environment", configPath, err)
	}

	logger.Init(viper.GetBool(constants.ViperLogDevKey))
	defer logger.Sync()

	dsn := viper.GetString(constants.ViperDatabaseDSNKey)
	if dsn == "" {
		logger.Fatal(ctx, fmt.Errorf("database.dsn: %w", constants.ErrMissingConfig))
	}

	pool, err := xpgx.NewPool(ctx, dsn)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	defer pool.Close()

	priceStore := store.NewStore(pool)
	m := metrics.New()
	ingestService := ingest.NewIngestService(priceStore, m)

	if once {
		summary, err := ingestService.RunAll(ctx)
		if err != nil {
			logger.Fatal(ctx, err)
		}

		if len(summary.Reports) > 0 && !summary.AnySucceeded() {
			logger.Sync()
			pool.Close()
			os.Exit(1)
		}

		return
	}

	if viper.GetString(constants.ViperSecretKey) == "" {
		logger.Fatal(ctx, fmt.Errorf("secret: %w", constants.ErrMissingConfig))
	}

	apiService, err := api.NewAPIService(ingestService, m)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	go apiService.Serve(viper.GetString(constants.ViperListenAddrKey))
	logger.Infof(ctx, "listening on %s", viper.GetString(constants.ViperListenAddrKey))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := apiService.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "shutdown: %v", err)
	}
}

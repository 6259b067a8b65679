package constants

// Viper configuration keys. Environment overrides use the MARKET_INGESTOR_
// prefix with dots replaced by underscores, e.g. MARKET_INGESTOR_DATABASE_DSN.
const (
	ViperSecretKey      = "secret"
	ViperDatabaseDSNKey = "database.dsn"
	ViperListenAddrKey  = "http.addr"
	ViperLogDevKey      = "log.dev"

	ViperUserAgentKey      = "ingest.user_agent"
	ViperRequestTimeoutKey = "ingest.request_timeout"
	ViperMaxRetriesKey     = "ingest.max_retries"
	ViperBatchSizeKey      = "ingest.batch_size"
	ViperParallelismKey    = "ingest.source_parallelism"
	ViperHTMLDirKey        = "ingest.commodity_html_dir"
)

const CookieKeySecretToken = "secret_token"

// Status values carried on stored price rows.
const (
	PriceStatusReady = "ready"

	PriceTypeWholesale = "wholesale"
)

// DefaultUnit applies when a board omits the trade unit column.
const DefaultUnit = "quintal"

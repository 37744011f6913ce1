package config

// Application constants
const (
	// Application Info
	AppName     = "台股分析系統 API"
	AppVersion  = "2.0.0"
	ServiceName = "twstock"

	// APIPrefix is the mount point of the versioned query API.
	APIPrefix = "/api/v1"

	// File Paths (relative to the base directory)
	DefaultDataDir   = "data"
	DefaultStockDir  = "stock"
	DefaultDailyDir  = "daily"
	DefaultStaticDir = "static"
	DefaultLogsDir   = "logs"

	// TableExt is the extension of every instrument and snapshot file.
	TableExt = ".csv"

	// Query defaults
	DefaultHistoryLimit = 100
	DefaultStatsDays    = 20
	DefaultRankLimit    = 10

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

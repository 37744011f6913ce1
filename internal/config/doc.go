// Package config provides centralized configuration management for the query
// service. It handles loading configuration from multiple sources, validation,
// and resolution of the data directories.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// Defaults are applied with github.com/creasty/defaults through the
// SetDefaults method of each section, the file is read with gopkg.in/yaml.v2
// and overrides are read with github.com/kelseyhightower/envconfig.
//
// # Environment Variables
//
// All environment variables follow the pattern TWSTOCK_<SECTION>_<FIELD>:
//
//	TWSTOCK_SERVER_PORT=8000
//	TWSTOCK_SERVER_DEBUG=true
//	TWSTOCK_PATHS_DATA_DIR=/srv/twstock/data
//	TWSTOCK_LOGGING_LEVEL=debug
//	TWSTOCK_QUERY_BATCH_CONCURRENCY=8
//
// TWSTOCK_CONFIG names a config file explicitly; otherwise config.yaml and
// configs/config.yaml are tried in the working directory.
//
// # Path Management
//
// ResolvePaths turns the PathsConfig section into absolute directories.
// Nothing is created on disk until the entry point calls
// Paths.EnsureDirectories:
//
//	paths, err := config.ResolvePaths(cfg.Paths)
//	if err != nil {
//	    return err
//	}
//	if err := paths.EnsureDirectories(); err != nil {
//	    return err
//	}
//	file := paths.StockFile("2330")
package config

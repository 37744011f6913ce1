// Package app wires the stock query API together and runs it.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config.yaml and TWSTOCK_* variables
//	2. Initialize logging and OpenTelemetry
//	3. Resolve and create the data, static and log directories
//	4. Build the table loader and the query services
//	5. Set up middleware, handlers and the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Tests build an application from an explicit configuration with New and
// drive Router directly.
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// the configured shutdown timeout and flushes telemetry. Initialization
// errors are returned to the caller; the package never calls os.Exit.
package app

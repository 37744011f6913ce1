// Package files provides read-only discovery of the table files the query
// service serves.
//
// Discovery lists the delimited files of a directory and turns their base
// names into identifiers: instrument ids for the stock directory and
// snapshot dates for the daily directory. ValidID guards every identifier
// taken from a request before it is turned into a path.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.DataDir)
//
//	// Instrument ids with a history file
//	ids, err := discovery.ListIDs(paths.StockDir)
package files

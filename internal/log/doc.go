// Package log provides simple leveled logging for dnsblockd.
//
// This package implements a lightweight logging system with colored output
// and support for different log levels: DEBUG, INFO, WARN, and ERROR.
// It provides global logging functions that can be used throughout the application.
//
// # Log Levels
//
//   - DEBUG: Detailed diagnostic information (only shown in verbose mode)
//   - INFO: General informational messages
//   - WARN: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures and exceptions
//
// # Example Usage
//
// Basic logging:
//
//	log.Infof("Starting DNS listener on %s", addr)
//	log.Warnf("Filter source %s unavailable, using cached copy", name)
//	log.Errorf("Failed to resolve: %v", err)
//
// Enabling verbose mode for debug output:
//
//	log.SetVerbose(true)
//	log.Debugf("Query trace: %+v", q)
//
// Fatal errors that exit the application:
//
//	if err != nil {
//	    log.Fatalf("Critical error: %v", err) // Exits with code 1
//	}
//
// The package uses global state for simplicity but provides thread-safe
// operations for concurrent use across goroutines.
package log

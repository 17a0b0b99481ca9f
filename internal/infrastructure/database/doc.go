// Package database provides SQLite database connectivity for ACS Control Core.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Foreign key enforcement at the connection level
//   - Schema migrations embedded in the binary
//   - Connection lifecycle management
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Performance Characteristics:
//   - WAL mode allows concurrent reads during writes
//   - Busy timeout prevents lock contention errors
//   - A single writer connection serialises access from the MQTT delivery
//     goroutines and the scheduler tick
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database

// Package database manages the SQLite record store connection.
//
// This package provides:
//   - Connection setup with WAL mode and busy-timeout pragmas
//   - Schema migrations from embedded SQL files
//   - Health checks for startup verification
//
// The record store exclusively owns persisted bin, credential, and event
// log state. Repositories in the bin, credential, and eventlog packages
// operate through the *sql.DB embedded in DB.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "./data/smartbin.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database

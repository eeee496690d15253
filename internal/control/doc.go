// Package control implements the backend decision engine.
//
// Inbound broker traffic flows through the Dispatcher, which shards by
// bin ID so each bin's messages are processed in order while different
// bins run in parallel. Class handlers carry the business rules:
//
//   - Resolver decides credential scans and commands lids open
//   - Engine validates fill telemetry and raises bin-full alerts
//   - Tracker follows online/offline presence
//   - Distributor pushes retained per-bin configuration
//   - Commander issues operator-initiated lid commands
//
// Handlers re-read the record store on every decision; none of them
// caches bin or credential state.
package control

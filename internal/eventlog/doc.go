// Package eventlog provides the append-only audit trail.
//
// Every business decision the control plane makes - access granted or
// denied, bin-full alerts, presence transitions, configuration changes -
// lands here as an Entry. Rows are never updated or deleted; the admin
// API reads them newest first.
package eventlog

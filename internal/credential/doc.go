// Package credential manages the RFID credential registry.
//
// Devices never hold credential data; they forward scanned UIDs to the
// control plane, which resolves each scan against this store at decision
// time. A credential is active or inactive - inactive credentials are
// denied but kept for event-log attribution.
package credential

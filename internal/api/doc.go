// Package api provides the HTTP admin API for the Smart Bin control plane.
//
// It exposes bin provisioning and configuration, credential management,
// remote lid commands, and the event log to operator tooling. Device
// traffic never passes through here; devices speak MQTT only.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

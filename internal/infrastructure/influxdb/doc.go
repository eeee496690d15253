// Package influxdb provides optional time-series history for bin telemetry.
//
// The telemetry engine writes each validated fill-level reading and each
// presence transition as a point. Writes are batched and non-blocking so
// a slow or absent InfluxDB never stalls message dispatch.
//
// The integration is config-gated: when influxdb.enabled is false the
// control plane runs without it and Connect returns ErrDisabled.
package influxdb

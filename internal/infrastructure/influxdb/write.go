package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteFillLevel records a validated telemetry reading for a bin.
//
// The write is non-blocking; points are batched and sent asynchronously.
// Readings are tagged by bin so dashboards can chart fill trends and
// collection schedules per bin.
//
// Parameters:
//   - binID: Bin identity (e.g., "bin-001")
//   - levelPercent: Derived fill percentage [0,100]
//   - distanceCM: Raw distance reading in centimetres
func (c *Client) WriteFillLevel(binID string, levelPercent int, distanceCM float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"fill_level",
		map[string]string{
			"bin_id": binID,
		},
		map[string]interface{}{
			"level_percent": levelPercent,
			"distance_cm":   distanceCM,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePresence records an online/offline transition for a bin.
//
// Parameters:
//   - binID: Bin identity
//   - online: New presence state
func (c *Client) WritePresence(binID string, online bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"presence",
		map[string]string{
			"bin_id": binID,
		},
		map[string]interface{}{
			"online": online,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

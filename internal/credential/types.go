package credential

import "time"

// Credential is an RFID card or fob entitled to open bins in AUTH mode.
// The UID is the tag identifier as reported by the reader hardware.
type Credential struct {
	UID       string    `json:"uid"`
	Holder    string    `json:"holder"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

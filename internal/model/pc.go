package model

import "time"

// Mode is the management mode assigned to a PC.
type Mode string

const (
	// ModeRestore rolls the PC back to its active snapshot on shutdown.
	ModeRestore Mode = "Restore"
	// ModePersistent keeps changes across shutdowns.
	ModePersistent Mode = "Persistent"
	// ModeMaintenance keeps changes and excludes the PC from nightly restore.
	ModeMaintenance Mode = "Maintenance"
)

// Modes lists every mode the store accepts.
var Modes = []Mode{ModeRestore, ModePersistent, ModeMaintenance}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// Status values reported by managed PCs.
const (
	StatusOnline  = "Online"
	StatusOffline = "Offline"
)

// PC represents a managed computer in a lab or classroom.
type PC struct {
	ID               int        `json:"pc_id"`
	Name             string     `json:"pc_name"`
	LocationID       int        `json:"location_id"`
	IPAddress        string     `json:"ip_address"`
	Status           string     `json:"status"`
	Mode             Mode       `json:"mode"`
	ActiveSnapshotID *int       `json:"active_snapshot_id,omitempty"`
	HealthScore      int        `json:"health_score"`
	LastSeen         *time.Time `json:"last_seen,omitempty"`
}

// PCInfo is the dashboard projection of a PC joined with its location and
// active snapshot.
type PCInfo struct {
	PC
	LocationName      string `json:"location_name"`
	Floor             int    `json:"floor"`
	ActiveSlot        *int   `json:"active_slot,omitempty"`
	ActiveDescription string `json:"active_description,omitempty"`
}

// PCRegistration carries the fields needed to register a new PC.
type PCRegistration struct {
	Name       string `json:"pc_name"`
	LocationID int    `json:"location_id"`
	IPAddress  string `json:"ip_address"`
}

// Location is a room or area that hosts PCs.
type Location struct {
	ID    int    `json:"location_id"`
	Name  string `json:"location_name"`
	Floor int    `json:"floor"`
}

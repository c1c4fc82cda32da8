package model

import "time"

// MaxSnapshotSlots is the number of recovery slots each PC has.
const MaxSnapshotSlots = 5

// Snapshot is a named recovery point of a PC.
type Snapshot struct {
	ID          int       `json:"snapshot_id"`
	PCID        int       `json:"pc_id"`
	SlotNumber  int       `json:"slot_number"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// InstalledSoftware records a program installed on a PC. Rows are never updated.
type InstalledSoftware struct {
	ID          int       `json:"software_id"`
	PCID        int       `json:"pc_id"`
	Name        string    `json:"software_name"`
	InstallDate time.Time `json:"install_date"`
}

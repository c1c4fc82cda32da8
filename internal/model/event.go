package model

import "time"

// Event types written to the audit trail.
const (
	EventPCRegistered       = "PC_Registered"
	EventModeChange         = "Mode_Change"
	EventSnapshotCreated    = "Snapshot_Created"
	EventRemoteShutdown     = "Remote_Shutdown"
	EventRemoteRestart      = "Remote_Restart"
	EventRemoteCommand      = "Remote_Command"
	EventHealthCheck        = "Health_Check"
	EventNightlyMaintenance = "Nightly_Maintenance"
)

// Remote command types with shutdown semantics. Any other command type is
// only recorded.
const (
	CommandLogoff  = "Logoff"
	CommandRestart = "Restart"
)

// EventLogEntry is one append-only audit row.
type EventLogEntry struct {
	ID        int       `json:"log_id"`
	EventTime time.Time `json:"event_time"`
	EventType string    `json:"event_type"`
	PCID      *int      `json:"pc_id,omitempty"`
	PCName    string    `json:"pc_name,omitempty"`
	Details   string    `json:"details"`
}

// RemoteCommand is an admin instruction sent to a managed PC.
type RemoteCommand struct {
	PCID     int       `json:"pc_id"`
	Command  string    `json:"command"`
	Message  string    `json:"message"`
	IssuedBy int       `json:"issued_by"`
	IssuedAt time.Time `json:"issued_at"`
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"netclass-console/internal/model"
)

// Custom errors for better error handling
var (
	ErrPCNotFound         = errors.New("PC not found")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrSnapshotNotOwnedBy = errors.New("snapshot does not belong to this PC")
)

// Procedure names exposed by the database boundary
const (
	ProcRegisterPC         = "sp_register_pc"
	ProcChangePCMode       = "sp_change_pc_mode"
	ProcCreateSnapshot     = "sp_create_snapshot"
	ProcShutdown           = "sp_client_shutdown_process"
	ProcHealthScore        = "sp_calculate_health_score"
	ProcNightlyMaintenance = "sp_nightly_maintenance"
)

// Status messages returned through the procedures' output slot
const (
	MsgSuccess            = "Success"
	MsgPCNotFound         = "PC not found"
	MsgLocationNotFound   = "Location not found"
	MsgDuplicatePCName    = "Duplicate PC name"
	MsgDuplicateIPAddress = "Duplicate IP address"
	MsgPCNameRequired     = "PC name is required"
	MsgInvalidSlot        = "Invalid slot number"
	MsgSlotInUse          = "Slot already in use"
)

// ProcedureError is a business failure reported by a procedure through its
// output slot. Message is meant to be shown to the operator verbatim.
type ProcedureError struct {
	Procedure string
	Message   string
}

func (e *ProcedureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Procedure, e.Message)
}

// Is lets callers match a "PC not found" outcome with ErrPCNotFound.
func (e *ProcedureError) Is(target error) bool {
	return target == ErrPCNotFound && e.Message == MsgPCNotFound
}

// procedureResult converts a procedure status message into an error.
func procedureResult(procedure, message string) error {
	if message == MsgSuccess {
		return nil
	}
	return &ProcedureError{Procedure: procedure, Message: message}
}

// Store is the database boundary of the console. Read methods run queries;
// the mutating methods invoke the named procedures.
type Store interface {
	// Reads
	ListPCs(ctx context.Context) ([]model.PCInfo, error)
	GetPC(ctx context.Context, pcID int) (*model.PCInfo, error)
	ListLocations(ctx context.Context) ([]model.Location, error)
	ListSnapshots(ctx context.Context, pcID int) ([]model.Snapshot, error)
	ListSoftware(ctx context.Context, pcID int) ([]model.InstalledSoftware, error)
	GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
	ListEvents(ctx context.Context, limit int) ([]model.EventLogEntry, error)

	// Procedures
	RegisterPC(ctx context.Context, reg model.PCRegistration) error
	ChangeMode(ctx context.Context, pcID int, mode model.Mode, adminID int) error
	CreateSnapshot(ctx context.Context, pcID, slot int, description string) error
	Shutdown(ctx context.Context, pcID int) (string, error)
	CalculateHealthScores(ctx context.Context) (string, error)
	RunNightlyMaintenance(ctx context.Context) (string, error)

	// Direct writes
	SetActiveSnapshot(ctx context.Context, pcID, snapshotID int) error
	MarkOnline(ctx context.Context, pcID int) error
	InstallSoftware(ctx context.Context, pcID int, name string) error
	AppendEvent(ctx context.Context, eventType string, pcID *int, details string) error

	// Analytics
	SoftwareRankings(ctx context.Context) ([]model.SoftwareRanking, error)
	LocationRollup(ctx context.Context) ([]model.LocationRollupRow, error)
	SoftwareCounts(ctx context.Context) ([]model.SoftwareCount, error)

	// WithinTx runs fn against a store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
}

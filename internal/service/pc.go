package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"netclass-console/internal/model"
	"netclass-console/internal/repository"
	"netclass-console/pkg/errors"
	"netclass-console/pkg/validation"
)

// EventLogLimit is the number of audit rows shown on the log page.
const EventLogLimit = 100

// Dashboard lists every PC with the locations they can be assigned to.
type Dashboard struct {
	PCs       []model.PCInfo   `json:"pcs"`
	Locations []model.Location `json:"locations"`
}

// PCDetail is one PC with its recovery points and installed programs.
type PCDetail struct {
	PC        model.PCInfo              `json:"pc"`
	Snapshots []model.Snapshot          `json:"snapshots"`
	Software  []model.InstalledSoftware `json:"software"`
}

// PCService handles the admin operations on managed PCs
type PCService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewPCService creates a new PC service
func NewPCService(store repository.Store, logger *zap.Logger) *PCService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PCService{store: store, logger: logger}
}

// Dashboard returns all PCs ordered by id and all locations.
func (s *PCService) Dashboard(ctx context.Context) (*Dashboard, error) {
	pcs, err := s.store.ListPCs(ctx)
	if err != nil {
		return nil, storeError(err, "list PCs")
	}

	locations, err := s.store.ListLocations(ctx)
	if err != nil {
		return nil, storeError(err, "list locations")
	}

	return &Dashboard{PCs: pcs, Locations: locations}, nil
}

// Locations returns the locations offered by the registration form.
func (s *PCService) Locations(ctx context.Context) ([]model.Location, error) {
	locations, err := s.store.ListLocations(ctx)
	if err != nil {
		return nil, storeError(err, "list locations")
	}
	return locations, nil
}

// Detail returns a PC with its snapshots ordered by slot and its software
// newest first.
func (s *PCService) Detail(ctx context.Context, pcID int) (*PCDetail, error) {
	pc, err := s.store.GetPC(ctx, pcID)
	if err != nil {
		return nil, storeError(err, "get PC")
	}

	snapshots, err := s.store.ListSnapshots(ctx, pcID)
	if err != nil {
		return nil, storeError(err, "list snapshots")
	}

	software, err := s.store.ListSoftware(ctx, pcID)
	if err != nil {
		return nil, storeError(err, "list installed software")
	}

	return &PCDetail{PC: *pc, Snapshots: snapshots, Software: software}, nil
}

// RegisterPC validates the input and invokes the registration procedure.
func (s *PCService) RegisterPC(ctx context.Context, reg model.PCRegistration) error {
	if fieldErrors := validation.ValidateRegistrationInput(&reg); len(fieldErrors) > 0 {
		return errors.ValidationErrorWithDetails("Invalid registration", fieldErrors)
	}

	if err := s.store.RegisterPC(ctx, reg); err != nil {
		s.logger.Warn("PC registration rejected",
			zap.String("pc_name", reg.Name),
			zap.String("ip_address", reg.IPAddress),
			zap.Error(err),
		)
		return storeError(err, "register PC")
	}

	s.logger.Info("PC registered",
		zap.String("pc_name", reg.Name),
		zap.Int("location_id", reg.LocationID),
		zap.String("ip_address", reg.IPAddress),
	)
	return nil
}

// ChangeMode requests a mode transition on behalf of an admin. Transition
// rules are enforced by the procedure.
func (s *PCService) ChangeMode(ctx context.Context, pcID int, mode string, adminID int) error {
	if err := validation.ValidatePositiveID("pc_id", pcID); err != nil {
		return errors.ValidationError(err.Error())
	}

	if err := s.store.ChangeMode(ctx, pcID, model.Mode(strings.TrimSpace(mode)), adminID); err != nil {
		return storeError(err, "change mode")
	}

	s.logger.Info("PC mode changed",
		zap.Int("pc_id", pcID),
		zap.String("mode", mode),
		zap.Int("admin_id", adminID),
	)
	return nil
}

// CreateSnapshot records a recovery point in the given slot and reports the
// procedure's actual outcome.
func (s *PCService) CreateSnapshot(ctx context.Context, pcID, slot int, description string) error {
	details := map[string]string{}
	if err := validation.ValidatePositiveID("pc_id", pcID); err != nil {
		details["pc_id"] = err.Error()
	}
	if err := validation.ValidateSlotNumber(slot); err != nil {
		details["slot_number"] = err.Error()
	}
	description = strings.TrimSpace(description)
	if err := validation.ValidateMaxLength("description", description, validation.MaxDescriptionLength); err != nil {
		details["description"] = err.Error()
	}
	if len(details) > 0 {
		return errors.ValidationErrorWithDetails("Invalid snapshot", details)
	}

	if err := s.store.CreateSnapshot(ctx, pcID, slot, description); err != nil {
		return storeError(err, "create snapshot")
	}

	s.logger.Info("Snapshot created", zap.Int("pc_id", pcID), zap.Int("slot_number", slot))
	return nil
}

// SetActiveSnapshot selects the recovery point restored on shutdown. The
// snapshot must belong to the PC.
func (s *PCService) SetActiveSnapshot(ctx context.Context, pcID, snapshotID int) error {
	details := map[string]string{}
	if err := validation.ValidatePositiveID("pc_id", pcID); err != nil {
		details["pc_id"] = err.Error()
	}
	if err := validation.ValidatePositiveID("snapshot_id", snapshotID); err != nil {
		details["snapshot_id"] = err.Error()
	}
	if len(details) > 0 {
		return errors.ValidationErrorWithDetails("Invalid snapshot selection", details)
	}

	if err := s.store.SetActiveSnapshot(ctx, pcID, snapshotID); err != nil {
		return storeError(err, "set active snapshot")
	}

	s.logger.Info("Active snapshot changed", zap.Int("pc_id", pcID), zap.Int("snapshot_id", snapshotID))
	return nil
}

// RecentEvents returns the latest audit rows, newest first.
func (s *PCService) RecentEvents(ctx context.Context) ([]model.EventLogEntry, error) {
	events, err := s.store.ListEvents(ctx, EventLogLimit)
	if err != nil {
		return nil, storeError(err, "list events")
	}
	return events, nil
}

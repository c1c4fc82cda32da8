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

// ClientService serves the unauthenticated endpoints used by PC agents
type ClientService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewClientService creates a new client service
func NewClientService(store repository.Store, logger *zap.Logger) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{store: store, logger: logger}
}

// ListPCs returns every PC so an agent can pick its identity.
func (s *ClientService) ListPCs(ctx context.Context) ([]model.PCInfo, error) {
	pcs, err := s.store.ListPCs(ctx)
	if err != nil {
		return nil, storeError(err, "list PCs")
	}
	return pcs, nil
}

// Desktop is what a PC agent sees after checking in.
type Desktop struct {
	PC       model.PCInfo              `json:"pc"`
	Software []model.InstalledSoftware `json:"software"`
}

// CheckIn marks the PC online and returns its current state with its
// installed programs, newest first.
func (s *ClientService) CheckIn(ctx context.Context, pcID int) (*Desktop, error) {
	if err := s.store.MarkOnline(ctx, pcID); err != nil {
		return nil, storeError(err, "mark PC online")
	}

	pc, err := s.store.GetPC(ctx, pcID)
	if err != nil {
		return nil, storeError(err, "get PC")
	}

	software, err := s.store.ListSoftware(ctx, pcID)
	if err != nil {
		return nil, storeError(err, "list installed software")
	}
	return &Desktop{PC: *pc, Software: software}, nil
}

// InstallSoftware records a program installed on the PC now.
func (s *ClientService) InstallSoftware(ctx context.Context, pcID int, name string) error {
	name = strings.TrimSpace(name)

	details := map[string]string{}
	if err := validation.ValidatePositiveID("pc_id", pcID); err != nil {
		details["pc_id"] = err.Error()
	}
	if err := validation.ValidateRequired("software_name", name); err != nil {
		details["software_name"] = err.Error()
	} else if err := validation.ValidateMaxLength("software_name", name, validation.MaxSoftwareNameLength); err != nil {
		details["software_name"] = err.Error()
	}
	if len(details) > 0 {
		return errors.ValidationErrorWithDetails("Invalid software install", details)
	}

	if err := s.store.InstallSoftware(ctx, pcID, name); err != nil {
		return storeError(err, "record installed software")
	}

	s.logger.Info("Software installed", zap.Int("pc_id", pcID), zap.String("software_name", name))
	return nil
}

// Shutdown runs the shutdown procedure for a PC-initiated shutdown. No audit
// row is written.
func (s *ClientService) Shutdown(ctx context.Context, pcID int) (string, error) {
	if err := validation.ValidatePositiveID("pc_id", pcID); err != nil {
		return "", errors.ValidationError(err.Error())
	}

	msg, err := s.store.Shutdown(ctx, pcID)
	if err != nil {
		return "", storeError(err, "shut down PC")
	}

	s.logger.Info("Client shutdown processed", zap.Int("pc_id", pcID), zap.String("result", msg))
	return msg, nil
}

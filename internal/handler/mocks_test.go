package handler

import (
	"context"
	"time"

	"netclass-console/internal/auth"
	"netclass-console/internal/model"
	"netclass-console/internal/service"
)

// Mock implementations for testing

// MockPCOperations is a mock implementation of PCOperations
type MockPCOperations struct {
	DashboardFunc         func(ctx context.Context) (*service.Dashboard, error)
	LocationsFunc         func(ctx context.Context) ([]model.Location, error)
	DetailFunc            func(ctx context.Context, pcID int) (*service.PCDetail, error)
	RegisterPCFunc        func(ctx context.Context, reg model.PCRegistration) error
	ChangeModeFunc        func(ctx context.Context, pcID int, mode string, adminID int) error
	CreateSnapshotFunc    func(ctx context.Context, pcID, slot int, description string) error
	SetActiveSnapshotFunc func(ctx context.Context, pcID, snapshotID int) error
	RecentEventsFunc      func(ctx context.Context) ([]model.EventLogEntry, error)
}

func (m *MockPCOperations) Dashboard(ctx context.Context) (*service.Dashboard, error) {
	if m.DashboardFunc != nil {
		return m.DashboardFunc(ctx)
	}
	return &service.Dashboard{PCs: []model.PCInfo{}, Locations: []model.Location{}}, nil
}

func (m *MockPCOperations) Locations(ctx context.Context) ([]model.Location, error) {
	if m.LocationsFunc != nil {
		return m.LocationsFunc(ctx)
	}
	return []model.Location{}, nil
}

func (m *MockPCOperations) Detail(ctx context.Context, pcID int) (*service.PCDetail, error) {
	if m.DetailFunc != nil {
		return m.DetailFunc(ctx, pcID)
	}
	return &service.PCDetail{}, nil
}

func (m *MockPCOperations) RegisterPC(ctx context.Context, reg model.PCRegistration) error {
	if m.RegisterPCFunc != nil {
		return m.RegisterPCFunc(ctx, reg)
	}
	return nil
}

func (m *MockPCOperations) ChangeMode(ctx context.Context, pcID int, mode string, adminID int) error {
	if m.ChangeModeFunc != nil {
		return m.ChangeModeFunc(ctx, pcID, mode, adminID)
	}
	return nil
}

func (m *MockPCOperations) CreateSnapshot(ctx context.Context, pcID, slot int, description string) error {
	if m.CreateSnapshotFunc != nil {
		return m.CreateSnapshotFunc(ctx, pcID, slot, description)
	}
	return nil
}

func (m *MockPCOperations) SetActiveSnapshot(ctx context.Context, pcID, snapshotID int) error {
	if m.SetActiveSnapshotFunc != nil {
		return m.SetActiveSnapshotFunc(ctx, pcID, snapshotID)
	}
	return nil
}

func (m *MockPCOperations) RecentEvents(ctx context.Context) ([]model.EventLogEntry, error) {
	if m.RecentEventsFunc != nil {
		return m.RecentEventsFunc(ctx)
	}
	return []model.EventLogEntry{}, nil
}

// MockCommandOperations is a mock implementation of CommandOperations
type MockCommandOperations struct {
	RemoteCommandFunc func(ctx context.Context, adminID, pcID int, commandType, message string) (*service.CommandResult, error)
}

func (m *MockCommandOperations) RemoteCommand(ctx context.Context, adminID, pcID int, commandType, message string) (*service.CommandResult, error) {
	if m.RemoteCommandFunc != nil {
		return m.RemoteCommandFunc(ctx, adminID, pcID, commandType, message)
	}
	return &service.CommandResult{Message: commandType}, nil
}

// MockClientOperations is a mock implementation of ClientOperations
type MockClientOperations struct {
	ListPCsFunc         func(ctx context.Context) ([]model.PCInfo, error)
	CheckInFunc         func(ctx context.Context, pcID int) (*service.Desktop, error)
	InstallSoftwareFunc func(ctx context.Context, pcID int, name string) error
	ShutdownFunc        func(ctx context.Context, pcID int) (string, error)
}

func (m *MockClientOperations) ListPCs(ctx context.Context) ([]model.PCInfo, error) {
	if m.ListPCsFunc != nil {
		return m.ListPCsFunc(ctx)
	}
	return []model.PCInfo{}, nil
}

func (m *MockClientOperations) CheckIn(ctx context.Context, pcID int) (*service.Desktop, error) {
	if m.CheckInFunc != nil {
		return m.CheckInFunc(ctx, pcID)
	}
	return &service.Desktop{}, nil
}

func (m *MockClientOperations) InstallSoftware(ctx context.Context, pcID int, name string) error {
	if m.InstallSoftwareFunc != nil {
		return m.InstallSoftwareFunc(ctx, pcID, name)
	}
	return nil
}

func (m *MockClientOperations) Shutdown(ctx context.Context, pcID int) (string, error) {
	if m.ShutdownFunc != nil {
		return m.ShutdownFunc(ctx, pcID)
	}
	return "Shutdown complete (changes preserved)", nil
}

// MockMaintenanceOperations is a mock implementation of MaintenanceOperations
type MockMaintenanceOperations struct {
	HealthCheckFunc    func(ctx context.Context) (string, error)
	RunMaintenanceFunc func(ctx context.Context) (string, error)
}

func (m *MockMaintenanceOperations) HealthCheck(ctx context.Context) (string, error) {
	if m.HealthCheckFunc != nil {
		return m.HealthCheckFunc(ctx)
	}
	return "Evaluated 0 PCs", nil
}

func (m *MockMaintenanceOperations) RunMaintenance(ctx context.Context) (string, error) {
	if m.RunMaintenanceFunc != nil {
		return m.RunMaintenanceFunc(ctx)
	}
	return "Restored 0 PCs (0 programs removed)", nil
}

// MockAnalyticsOperations is a mock implementation of AnalyticsOperations
type MockAnalyticsOperations struct {
	ReportFunc func(ctx context.Context) (*model.AnalyticsReport, error)
	ExportFunc func(ctx context.Context) ([]byte, error)
}

func (m *MockAnalyticsOperations) Report(ctx context.Context) (*model.AnalyticsReport, error) {
	if m.ReportFunc != nil {
		return m.ReportFunc(ctx)
	}
	return &model.AnalyticsReport{}, nil
}

func (m *MockAnalyticsOperations) Export(ctx context.Context) ([]byte, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx)
	}
	return []byte("PK"), nil
}

// MockAuthOperations is a mock implementation of AuthOperations
type MockAuthOperations struct {
	LoginFunc  func(ctx context.Context, username, password string) (*auth.Session, error)
	LogoutFunc func(ctx context.Context, token string) error
	// Track calls for verification
	LoggedOut []string
}

func (m *MockAuthOperations) Login(ctx context.Context, username, password string) (*auth.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	return &auth.Session{Token: "token", AdminID: 1, AdminName: "Admin", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m *MockAuthOperations) Logout(ctx context.Context, token string) error {
	m.LoggedOut = append(m.LoggedOut, token)
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	return nil
}

// MockPinger is a mock implementation of Pinger
type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Err
}

type testMocks struct {
	pcs         *MockPCOperations
	commands    *MockCommandOperations
	clients     *MockClientOperations
	maintenance *MockMaintenanceOperations
	analytics   *MockAnalyticsOperations
	auth        *MockAuthOperations
	store       *MockPinger
}

func createTestHandler() (*ConsoleHandler, *testMocks) {
	mocks := &testMocks{
		pcs:         &MockPCOperations{},
		commands:    &MockCommandOperations{},
		clients:     &MockClientOperations{},
		maintenance: &MockMaintenanceOperations{},
		analytics:   &MockAnalyticsOperations{},
		auth:        &MockAuthOperations{},
		store:       &MockPinger{},
	}

	handler := NewConsoleHandler(Services{
		PCs:         mocks.pcs,
		Commands:    mocks.commands,
		Clients:     mocks.clients,
		Maintenance: mocks.maintenance,
		Analytics:   mocks.analytics,
		Auth:        mocks.auth,
		Store:       mocks.store,
	}, SessionCookie{Name: "netclass_session", TTL: time.Hour}, nil)
	return handler, mocks
}

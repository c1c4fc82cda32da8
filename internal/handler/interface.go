package handler

import (
	"context"
	"net/http"

	"netclass-console/internal/auth"
	"netclass-console/internal/model"
	"netclass-console/internal/service"
)

// PCOperations is the admin PC workflow consumed by the console handlers.
type PCOperations interface {
	Dashboard(ctx context.Context) (*service.Dashboard, error)
	Locations(ctx context.Context) ([]model.Location, error)
	Detail(ctx context.Context, pcID int) (*service.PCDetail, error)
	RegisterPC(ctx context.Context, reg model.PCRegistration) error
	ChangeMode(ctx context.Context, pcID int, mode string, adminID int) error
	CreateSnapshot(ctx context.Context, pcID, slot int, description string) error
	SetActiveSnapshot(ctx context.Context, pcID, snapshotID int) error
	RecentEvents(ctx context.Context) ([]model.EventLogEntry, error)
}

// CommandOperations runs admin remote commands.
type CommandOperations interface {
	RemoteCommand(ctx context.Context, adminID, pcID int, commandType, message string) (*service.CommandResult, error)
}

// ClientOperations backs the unauthenticated PC agent endpoints.
type ClientOperations interface {
	ListPCs(ctx context.Context) ([]model.PCInfo, error)
	CheckIn(ctx context.Context, pcID int) (*service.Desktop, error)
	InstallSoftware(ctx context.Context, pcID int, name string) error
	Shutdown(ctx context.Context, pcID int) (string, error)
}

// MaintenanceOperations triggers fleet-wide jobs.
type MaintenanceOperations interface {
	HealthCheck(ctx context.Context) (string, error)
	RunMaintenance(ctx context.Context) (string, error)
}

// AnalyticsOperations produces the analytics report.
type AnalyticsOperations interface {
	Report(ctx context.Context) (*model.AnalyticsReport, error)
	Export(ctx context.Context) ([]byte, error)
}

// AuthOperations signs admins in and out.
type AuthOperations interface {
	Login(ctx context.Context, username, password string) (*auth.Session, error)
	Logout(ctx context.Context, token string) error
}

// Pinger reports store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConsoleHandlerInterface defines the contract for the console HTTP handlers.
type ConsoleHandlerInterface interface {
	// Session
	LoginPageHandler(w http.ResponseWriter, r *http.Request)
	LoginHandler(w http.ResponseWriter, r *http.Request)
	LogoutHandler(w http.ResponseWriter, r *http.Request)

	// Admin console
	DashboardHandler(w http.ResponseWriter, r *http.Request)
	RegisterFormHandler(w http.ResponseWriter, r *http.Request)
	RegisterPCHandler(w http.ResponseWriter, r *http.Request)
	ChangeModeHandler(w http.ResponseWriter, r *http.Request)
	PCDetailHandler(w http.ResponseWriter, r *http.Request)
	CreateSnapshotHandler(w http.ResponseWriter, r *http.Request)
	SetActiveSnapshotHandler(w http.ResponseWriter, r *http.Request)
	RemoteCommandHandler(w http.ResponseWriter, r *http.Request)
	HealthCheckHandler(w http.ResponseWriter, r *http.Request)
	RunMaintenanceHandler(w http.ResponseWriter, r *http.Request)
	AnalyticsHandler(w http.ResponseWriter, r *http.Request)
	AnalyticsExportHandler(w http.ResponseWriter, r *http.Request)
	EventLogHandler(w http.ResponseWriter, r *http.Request)

	// Client simulation
	ClientListHandler(w http.ResponseWriter, r *http.Request)
	ClientDesktopHandler(w http.ResponseWriter, r *http.Request)
	ClientInstallHandler(w http.ResponseWriter, r *http.Request)
	ClientShutdownHandler(w http.ResponseWriter, r *http.Request)

	// Health and monitoring
	HealthHandler(w http.ResponseWriter, r *http.Request)
}

// Ensure ConsoleHandler implements ConsoleHandlerInterface at compile time
var _ ConsoleHandlerInterface = (*ConsoleHandler)(nil)

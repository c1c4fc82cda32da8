package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"netclass-console/internal/repository"
)

// DefaultHealthThreshold is the score below which a PC triggers an alert.
const DefaultHealthThreshold = 50

const alertTimeout = 30 * time.Second

// HealthAlert reports a PC whose health score fell below the threshold.
type HealthAlert struct {
	PCID      int
	PCName    string
	Score     int
	Threshold int
}

// AlertSender delivers health alerts to operators.
type AlertSender interface {
	SendHealthAlert(ctx context.Context, alert HealthAlert) error
}

// MaintenanceService runs the health check and nightly maintenance procedures
type MaintenanceService struct {
	store     repository.Store
	alerts    AlertSender
	threshold int
	logger    *zap.Logger
	pending   sync.WaitGroup
}

// NewMaintenanceService creates a new maintenance service. A nil sender
// disables alerts; a non-positive threshold uses DefaultHealthThreshold.
func NewMaintenanceService(store repository.Store, alerts AlertSender, threshold int, logger *zap.Logger) *MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = DefaultHealthThreshold
	}
	return &MaintenanceService{store: store, alerts: alerts, threshold: threshold, logger: logger}
}

// HealthCheck scores every PC and alerts on those below the threshold.
// Alerts are sent in the background after the scores are stored.
func (s *MaintenanceService) HealthCheck(ctx context.Context) (string, error) {
	msg, err := s.store.CalculateHealthScores(ctx)
	if err != nil {
		s.logger.Error("Health check failed", zap.Error(err))
		return "", storeError(err, "calculate health scores")
	}
	s.logger.Info("Health check completed", zap.String("result", msg))

	if s.alerts == nil {
		return msg, nil
	}

	pcs, err := s.store.ListPCs(ctx)
	if err != nil {
		s.logger.Warn("Failed to load PCs for health alerts", zap.Error(err))
		return msg, nil
	}

	var alerts []HealthAlert
	for _, pc := range pcs {
		if pc.HealthScore < s.threshold {
			alerts = append(alerts, HealthAlert{PCID: pc.ID, PCName: pc.Name, Score: pc.HealthScore, Threshold: s.threshold})
		}
	}
	if len(alerts) > 0 {
		s.pending.Add(1)
		go s.sendAlerts(alerts)
	}

	return msg, nil
}

func (s *MaintenanceService) sendAlerts(alerts []HealthAlert) {
	defer s.pending.Done()

	ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
	defer cancel()

	for _, alert := range alerts {
		if err := s.alerts.SendHealthAlert(ctx, alert); err != nil {
			s.logger.Error("Failed to send health alert",
				zap.String("pc_name", alert.PCName),
				zap.Int("health_score", alert.Score),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("Health alert sent", zap.String("pc_name", alert.PCName), zap.Int("health_score", alert.Score))
	}
}

// WaitForAlerts blocks until background alert deliveries have finished.
func (s *MaintenanceService) WaitForAlerts() {
	s.pending.Wait()
}

// RunMaintenance restores Restore-mode PCs and marks every PC offline.
func (s *MaintenanceService) RunMaintenance(ctx context.Context) (string, error) {
	msg, err := s.store.RunNightlyMaintenance(ctx)
	if err != nil {
		s.logger.Error("Nightly maintenance failed", zap.Error(err))
		return "", storeError(err, "run nightly maintenance")
	}

	s.logger.Info("Nightly maintenance completed", zap.String("result", msg))
	return msg, nil
}

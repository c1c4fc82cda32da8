package notification

import (
	"context"
	"fmt"
	"strconv"

	"netclass-console/internal/notification"
	"netclass-console/internal/service"
)

// ServiceAdapter adapts the webhook client to the service layer's AlertSender
type ServiceAdapter struct {
	client notification.Notifier
}

var _ service.AlertSender = (*ServiceAdapter)(nil)

// NewServiceAdapter creates a new notification service adapter
func NewServiceAdapter(client notification.Notifier) *ServiceAdapter {
	return &ServiceAdapter{client: client}
}

// SendHealthAlert posts a low health score alert for one PC
func (a *ServiceAdapter) SendHealthAlert(ctx context.Context, alert service.HealthAlert) error {
	return a.client.Send(ctx, notification.Notification{
		Level:   mapAlertLevel(alert.Score),
		PCName:  alert.PCName,
		Message: fmt.Sprintf("PC %s health score %d is below %d", alert.PCName, alert.Score, alert.Threshold),
		Metadata: map[string]string{
			"notification_type": "health_below_threshold",
			"pc_id":             strconv.Itoa(alert.PCID),
			"health_score":      strconv.Itoa(alert.Score),
			"threshold":         strconv.Itoa(alert.Threshold),
		},
	})
}

// mapAlertLevel escalates alerts for PCs that are close to unusable
func mapAlertLevel(score int) notification.NotificationLevel {
	switch {
	case score <= 10:
		return notification.LevelCritical
	case score <= 25:
		return notification.LevelError
	default:
		return notification.LevelWarning
	}
}

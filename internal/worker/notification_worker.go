package worker

import (
	"go.uber.org/zap"

	"github.com/caseflow/triage-service/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to case events.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		logger.Warn("notification worker disabled")
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification worker registered")
}

// internal/notify/log.go
package notify

import (
	"context"

	"quotation-relay/internal/common/logger"
	"quotation-relay/internal/models"
)

// LogNotifier writes signals to the structured log. It is always installed.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: logger.ForComponent(log, "notify")}
}

func (n *LogNotifier) Notify(_ context.Context, s models.Signal) {
	fields := map[string]interface{}{
		"signal":        string(s.Kind),
		"transactionId": s.TransactionID,
	}
	if s.Code != "" {
		fields["code"] = s.Code
	}
	msg := Message(s)
	switch s.Kind {
	case models.SignalWarning:
		n.log.Warn(msg, fields)
	case models.SignalError:
		n.log.Error(msg, fields)
	case models.SignalProcessingCleared:
		n.log.Debug("processing indicator cleared", fields)
	default:
		n.log.Info(msg, fields)
	}
}

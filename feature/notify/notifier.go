package notify

import (
	"context"
	"fmt"

	"calendar-mirror/core/reconcile"
)

// Title is used for every failure notification.
const Title = "Calendar mirror failed"

// detailsLimit caps the error details shown in a notification.
const detailsLimit = 100

// Message is a failure notification.
type Message struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	RunID   string `json:"run_id"`
	Phase   string `json:"phase,omitempty"`
}

// Notifier delivers failure notifications.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, msg Message) error
}

// NewMessage builds the notification of a failed pass.
func NewMessage(report *reconcile.Report, err error) Message {
	msg := Message{Title: Title, RunID: report.RunID, Phase: string(report.Phase)}

	if report.Phase != "" {
		msg.Message = fmt.Sprintf("Synchronization failed during %s", report.Phase)
	} else {
		msg.Message = "Synchronization failed"
	}

	details := report.Error
	if details == "" && err != nil {
		details = err.Error()
	}
	if details != "" {
		msg.Message += "\n\n" + preview(details)
	}
	return msg
}

func preview(details string) string {
	runes := []rune(details)
	if len(runes) <= detailsLimit {
		return details
	}
	return string(runes[:detailsLimit]) + "..."
}

package jobqueue

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

// processReportNotificationJob delivers the moderator email for a new report
func (q *Queue) processReportNotificationJob(job *Job) error {
	payload, err := ReportNotificationJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid report notification payload: %w", err)
	}

	if q.mailer == nil {
		log.Warnf("[JobQueue] No mailer configured, dropping notification for report %s", payload.ReportUUID)
		return nil
	}

	if err := q.mailer.SendReportNotification(*payload); err != nil {
		return fmt.Errorf("failed to send report notification for %s: %w", payload.ReportUUID, err)
	}
	return nil
}

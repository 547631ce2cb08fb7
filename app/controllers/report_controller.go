package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lazos-app/lazos-api/app/models"
	"github.com/lazos-app/lazos-api/app/repository"
	"github.com/lazos-app/lazos-api/internal/pkg/jobqueue"
)

type createReportRequest struct {
	PostID      string `json:"post_id" validate:"omitempty,uuid4"`
	AlertID     string `json:"alert_id" validate:"omitempty,uuid4"`
	Reason      string `json:"reason" validate:"required,oneof=not_animal inappropriate spam other"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// HandleCreateReport files a complaint against a published post or alert.
// Exactly one of post_id and alert_id must be given, and the target must be
// publicly visible.
func HandleCreateReport(c *fiber.Ctx) error {
	var req createReportRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	if (req.PostID == "") == (req.AlertID == "") {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "exactly one of post_id and alert_id is required")
	}
	if req.Reason == models.ReportReasonOther && len(req.Description) < 5 {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "a short description is required for reason \"other\"")
	}

	ipv4, ipv6 := GetClientIP(c)
	report := &models.Report{
		Reason:       req.Reason,
		Description:  req.Description,
		Status:       models.ReportStatusPending,
		ReporterIPv4: ipv4,
		ReporterIPv6: ipv6,
	}

	repos := repository.GetGlobalFactory().GetRepositories()
	targetType := "post"
	targetUUID := req.PostID
	if req.PostID != "" {
		post, err := repos.Post.GetByUUID(req.PostID)
		if err != nil || post.Status != models.StatusActive {
			return errorJSON(c, fiber.StatusNotFound, "invalid_target", "reported post not found")
		}
		report.PostID = &post.ID
	} else {
		alert, err := repos.Alert.GetByUUID(req.AlertID)
		if err != nil || alert.Status != models.StatusActive {
			return errorJSON(c, fiber.StatusNotFound, "invalid_target", "reported alert not found")
		}
		report.AlertID = &alert.ID
		targetType = "alert"
		targetUUID = req.AlertID
	}

	if err := repos.Report.Create(report); err != nil {
		log.Errorf("[ReportController] Failed to create report: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "could not store report")
	}

	// Notify the moderator in the background, failure must not block the reporter
	if queue != nil {
		payload := jobqueue.ReportNotificationJobPayload{
			ReportUUID:  report.UUID,
			TargetType:  targetType,
			TargetUUID:  targetUUID,
			Reason:      report.Reason,
			Description: report.Description,
		}
		if _, err := queue.EnqueueJob(jobqueue.JobTypeReportNotification, payload.ToMap()); err != nil {
			log.Errorf("[ReportController] Failed to enqueue notification for report %s: %v", report.UUID, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lazos-app/lazos-api/app/models"
	"github.com/lazos-app/lazos-api/app/repository"
	"github.com/lazos-app/lazos-api/internal/pkg/jobqueue"
)

// reportSummary is the moderation queue row: the report plus enough target
// context to act on it without further lookups.
type reportSummary struct {
	Report       models.Report `json:"report"`
	TargetType   string        `json:"target_type"`
	TargetUUID   string        `json:"target_uuid"`
	TargetStatus string        `json:"target_status"`
	PendingCount int64         `json:"pending_count"`
}

// HandleAdminListReports returns the moderation queue. Defaults to pending
// reports, ?status=resolved shows handled ones.
func HandleAdminListReports(c *fiber.Ctx) error {
	status := c.Query("status", models.ReportStatusPending)
	if status != models.ReportStatusPending && status != models.ReportStatusResolved {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "status must be pending or resolved")
	}

	offset, limit := parsePagination(c)
	repos := repository.GetGlobalFactory().GetRepositories()
	reports, err := repos.Report.ListByStatus(status, offset, limit)
	if err != nil {
		log.Errorf("[AdminController] Failed to list reports: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "could not list reports")
	}

	summaries := make([]reportSummary, 0, len(reports))
	for _, report := range reports {
		summary := reportSummary{Report: report}
		switch {
		case report.Post != nil:
			summary.TargetType = "post"
			summary.TargetUUID = report.Post.UUID
			summary.TargetStatus = report.Post.Status
			summary.PendingCount, _ = repos.Report.CountPendingForPost(report.Post.ID)
		case report.Alert != nil:
			summary.TargetType = "alert"
			summary.TargetUUID = report.Alert.UUID
			summary.TargetStatus = report.Alert.Status
			summary.PendingCount, _ = repos.Report.CountPendingForAlert(report.Alert.ID)
		}
		summaries = append(summaries, summary)
	}

	return c.JSON(fiber.Map{"data": summaries})
}

// HandleAdminListPendingPosts returns posts waiting for manual review
func HandleAdminListPendingPosts(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	posts, err := repository.GetGlobalFactory().GetPostRepository().
		ListByStatus(models.StatusPendingApproval, offset, limit)
	if err != nil {
		log.Errorf("[AdminController] Failed to list pending posts: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "could not list pending posts")
	}
	return c.JSON(fiber.Map{"data": posts})
}

// HandleAdminGetPost returns a post in any lifecycle state
func HandleAdminGetPost(c *fiber.Ctx) error {
	post, err := repository.GetGlobalFactory().GetPostRepository().GetByUUID(c.Params("uuid"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "post not found")
	}
	return c.JSON(post)
}

// HandleAdminStats returns moderation workload counters
func HandleAdminStats(c *fiber.Ctx) error {
	repos := repository.GetGlobalFactory().GetRepositories()

	stats := fiber.Map{}
	for _, status := range []string{
		models.StatusActive, models.StatusPendingApproval,
		models.StatusRejected, models.StatusDeleted,
	} {
		count, err := repos.Post.CountByStatus(status)
		if err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "could not compute stats")
		}
		stats["posts_"+status] = count
	}

	activeAlerts, _ := repos.Alert.CountByStatus(models.StatusActive)
	pendingReports, _ := repos.Report.CountByStatus(models.ReportStatusPending)
	resolvedReports, _ := repos.Report.CountByStatus(models.ReportStatusResolved)
	stats["alerts_active"] = activeAlerts
	stats["reports_pending"] = pendingReports
	stats["reports_resolved"] = resolvedReports

	return c.JSON(stats)
}

// HandleAdminApprovePost publishes a post waiting for review
func HandleAdminApprovePost(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	if err := control.ApprovePost(uuid); err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(fiber.Map{"status": models.StatusActive})
}

type rejectPostRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// HandleAdminRejectPost turns down a post waiting for review. The reason is
// optional; when given it is recorded on the post.
func HandleAdminRejectPost(c *fiber.Ctx) error {
	var req rejectPostRequest
	// body is optional on reject
	_ = c.BodyParser(&req)
	if err := validate.Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "reason must be at most 500 characters")
	}

	uuid := c.Params("uuid")
	if err := control.RejectPost(uuid, req.Reason); err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(fiber.Map{"status": models.StatusRejected})
}

type deleteRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// HandleAdminDeletePost takes down a post, resolves its pending reports and
// schedules its stored images for deletion.
func HandleAdminDeletePost(c *fiber.Ctx) error {
	var req deleteRequest
	// body is optional on delete
	_ = c.BodyParser(&req)

	uuid := c.Params("uuid")
	repos := repository.GetGlobalFactory().GetRepositories()
	post, err := repos.Post.GetByUUID(uuid)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "post not found")
	}

	if err := control.DeletePost(uuid, req.Reason); err != nil {
		return lifecycleError(c, err)
	}

	enqueueImageCleanup(post)

	return c.JSON(fiber.Map{"status": models.StatusDeleted})
}

// HandleAdminDeleteAlert takes down an alert and resolves its pending reports
func HandleAdminDeleteAlert(c *fiber.Ctx) error {
	if err := control.DeleteAlert(c.Params("uuid")); err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(fiber.Map{"status": models.StatusDeleted})
}

// HandleAdminResolveReport marks a report handled without touching its target
func HandleAdminResolveReport(c *fiber.Ctx) error {
	if err := control.ResolveReport(c.Params("uuid")); err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(fiber.Map{"status": models.ReportStatusResolved})
}

// enqueueImageCleanup schedules the object storage leftovers of a deleted
// post for background removal
func enqueueImageCleanup(post *models.Post) {
	if queue == nil || len(post.Images) == 0 {
		return
	}

	keys := make([]string, 0, len(post.Images)*2)
	for _, img := range post.Images {
		if img.ObjectKey != "" {
			keys = append(keys, img.ObjectKey)
		}
		if img.ThumbnailKey != "" {
			keys = append(keys, img.ThumbnailKey)
		}
	}
	if len(keys) == 0 {
		return
	}

	payload := jobqueue.StorageDeleteJobPayload{PostUUID: post.UUID, ObjectKeys: keys}
	if _, err := queue.EnqueueJob(jobqueue.JobTypeStorageDelete, payload.ToMap()); err != nil {
		log.Errorf("[AdminController] Failed to enqueue storage cleanup for post %s: %v", post.UUID, err)
	}
}

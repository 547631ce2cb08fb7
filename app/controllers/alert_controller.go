package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lazos-app/lazos-api/app/models"
	"github.com/lazos-app/lazos-api/app/repository"
	"github.com/lazos-app/lazos-api/internal/pkg/moderation"
)

type createAlertRequest struct {
	Description  string  `json:"description" validate:"required"`
	AnimalType   string  `json:"animal_type" validate:"required,oneof=dog cat other"`
	Direction    string  `json:"direction" validate:"omitempty,max=200"`
	Latitude     float64 `json:"latitude" validate:"required,latitude"`
	Longitude    float64 `json:"longitude" validate:"required,longitude"`
	LocationName string  `json:"location_name" validate:"omitempty,max=200"`
}

// HandleCreateAlert accepts a text-only sighting alert. Alerts carry no
// photos, so only the text checks run; a surviving alert publishes directly.
func HandleCreateAlert(c *fiber.Ctx) error {
	var req createAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	decision := engine.Decide(c.Context(), moderation.Submission{Text: req.Description})
	if decision.Action == moderation.ActionReject {
		return rejectionResponse(c, decision)
	}

	ipv4, ipv6 := GetClientIP(c)
	alert := &models.Alert{
		Description:   moderation.Sanitize(req.Description),
		AnimalType:    req.AnimalType,
		Direction:     req.Direction,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		LocationName:  req.LocationName,
		SubmitterIPv4: ipv4,
		SubmitterIPv6: ipv6,
	}

	if err := control.CreateAlert(alert); err != nil {
		log.Errorf("[AlertController] Failed to create alert: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "could not store alert")
	}

	return c.Status(fiber.StatusCreated).JSON(alert)
}

// HandleListAlerts returns published alerts with optional filters
func HandleListAlerts(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	filter := repository.AlertFilter{
		Status:     models.StatusActive,
		AnimalType: c.Query("animal_type"),
		Offset:     offset,
		Limit:      limit,
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(sightingDateLayout, since)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "bad_request", "since must be YYYY-MM-DD")
		}
		filter.Since = &t
	}

	alerts, total, err := repository.GetGlobalFactory().GetAlertRepository().List(filter)
	if err != nil {
		log.Errorf("[AlertController] Failed to list alerts: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "could not list alerts")
	}

	return c.JSON(fiber.Map{
		"data":  alerts,
		"total": total,
	})
}

// HandleGetAlert returns a single published alert
func HandleGetAlert(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	alert, err := repository.GetGlobalFactory().GetAlertRepository().GetByUUID(uuid)
	if err != nil || alert.Status != models.StatusActive {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "alert not found")
	}
	return c.JSON(alert)
}

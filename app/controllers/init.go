package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/lazos-app/lazos-api/internal/pkg/imageprocessor"
	"github.com/lazos-app/lazos-api/internal/pkg/jobqueue"
	"github.com/lazos-app/lazos-api/internal/pkg/lifecycle"
	"github.com/lazos-app/lazos-api/internal/pkg/moderation"
	"github.com/lazos-app/lazos-api/internal/pkg/storage"
)

// Deps are the shared services the controllers work with. The storage client
// may be nil when object storage is disabled; uploads then fail with 503.
type Deps struct {
	Engine    *moderation.Engine
	Control   *lifecycle.Controller
	Processor *imageprocessor.Processor
	Store     *storage.Client
	StoreCfg  *storage.Config
	Queue     *jobqueue.Queue
}

var (
	engine    *moderation.Engine
	control   *lifecycle.Controller
	processor *imageprocessor.Processor
	store     *storage.Client
	storeCfg  *storage.Config
	queue     *jobqueue.Queue

	validate = validator.New()
)

// Initialize wires the controller package. Called once from main.
func Initialize(deps Deps) {
	engine = deps.Engine
	control = deps.Control
	processor = deps.Processor
	store = deps.Store
	storeCfg = deps.StoreCfg
	queue = deps.Queue
}

// rejectionResponse answers a rejected submission with the collected reasons.
// The error code tells text policy violations apart from unsafe images.
func rejectionResponse(c *fiber.Ctx, decision moderation.Decision) error {
	code := "validation_failed"
	if errors.Is(decision.Err, moderation.ErrUnsafeContent) {
		code = "unsafe_content"
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":    code,
		"messages": decision.Reasons,
	})
}

// lifecycleError translates controller errors into HTTP responses
func lifecycleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not_found", "target not found")
	case errors.Is(err, lifecycle.ErrInvalidTarget):
		return errorJSON(c, fiber.StatusConflict, "invalid_target", "action does not apply to the target in its current state")
	case errors.Is(err, lifecycle.ErrAlreadyTerminal):
		return errorJSON(c, fiber.StatusConflict, "already_terminal", "target is in a terminal state")
	case errors.Is(err, lifecycle.ErrActionInProgress):
		return errorJSON(c, fiber.StatusConflict, "action_in_progress", "another action on this target is still running")
	default:
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "unexpected error")
	}
}

package lifecycle

import (
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/lazos-app/lazos-api/app/models"
	"github.com/lazos-app/lazos-api/app/repository"
	"github.com/lazos-app/lazos-api/internal/pkg/moderation"
)

// StatusForAction maps a moderation decision to the initial lifecycle state
// of a stored item. Rejected submissions are never stored, so only publish
// and hold map to a state.
func StatusForAction(action moderation.Action) string {
	if action == moderation.ActionHoldForReview {
		return models.StatusPendingApproval
	}
	return models.StatusActive
}

// Controller owns all lifecycle transitions of posts, alerts and reports.
// Every mutating action takes a per-target slot in the in-flight set first,
// so the same target cannot be acted on twice concurrently; the database
// compare-and-transition remains the authoritative guard across instances.
type Controller struct {
	posts   repository.PostRepository
	alerts  repository.AlertRepository
	reports repository.ReportRepository

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewController creates a lifecycle controller on top of the repositories.
func NewController(repos *repository.Repositories) *Controller {
	return &Controller{
		posts:    repos.Post,
		alerts:   repos.Alert,
		reports:  repos.Report,
		inFlight: make(map[string]struct{}),
	}
}

func (c *Controller) begin(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[key]; busy {
		return ErrActionInProgress
	}
	c.inFlight[key] = struct{}{}
	return nil
}

func (c *Controller) end(key string) {
	c.mu.Lock()
	delete(c.inFlight, key)
	c.mu.Unlock()
}

// CreatePost stores a new post in the state the moderation decision dictates.
func (c *Controller) CreatePost(post *models.Post, action moderation.Action) error {
	post.Status = StatusForAction(action)
	return c.posts.Create(post)
}

// CreateAlert stores a new alert. Alerts carry no images, so a surviving
// submission is always published directly.
func (c *Controller) CreateAlert(alert *models.Alert) error {
	alert.Status = models.StatusActive
	return c.alerts.Create(alert)
}

// ApprovePost publishes a post that is waiting for review.
func (c *Controller) ApprovePost(uuid string) error {
	key := "post:" + uuid
	if err := c.begin(key); err != nil {
		return err
	}
	defer c.end(key)

	err := c.transitionPost(uuid, models.StatusPendingApproval, models.StatusActive, "")
	if err == nil {
		log.Infof("[Lifecycle] Post %s approved", uuid)
	}
	return err
}

// RejectPost turns down a post that is waiting for review. The reason is
// stored on the post for the submitter to see.
func (c *Controller) RejectPost(uuid, reason string) error {
	key := "post:" + uuid
	if err := c.begin(key); err != nil {
		return err
	}
	defer c.end(key)

	err := c.transitionPost(uuid, models.StatusPendingApproval, models.StatusRejected, reason)
	if err == nil {
		log.Infof("[Lifecycle] Post %s rejected", uuid)
	}
	return err
}

// DeletePost takes down a post and resolves every pending report against it.
func (c *Controller) DeletePost(uuid, reason string) error {
	key := "post:" + uuid
	if err := c.begin(key); err != nil {
		return err
	}
	defer c.end(key)

	post, err := c.posts.GetByUUID(uuid)
	if err != nil {
		return mapLookupError(err)
	}
	if post.IsTerminal() {
		return ErrAlreadyTerminal
	}

	if err := c.transitionPost(uuid, post.Status, models.StatusDeleted, reason); err != nil {
		return err
	}
	if err := c.reports.ResolveAllForPost(post.ID); err != nil {
		return err
	}
	log.Infof("[Lifecycle] Post %s deleted, pending reports resolved", uuid)
	return nil
}

// DeleteAlert takes down an alert and resolves every pending report against it.
func (c *Controller) DeleteAlert(uuid string) error {
	key := "alert:" + uuid
	if err := c.begin(key); err != nil {
		return err
	}
	defer c.end(key)

	alert, err := c.alerts.GetByUUID(uuid)
	if err != nil {
		return mapLookupError(err)
	}
	if alert.IsTerminal() {
		return ErrAlreadyTerminal
	}

	ok, err := c.alerts.TransitionStatus(uuid, alert.Status, models.StatusDeleted)
	if err != nil {
		return err
	}
	if !ok {
		return c.classifyAlertFailure(uuid)
	}
	if err := c.reports.ResolveAllForAlert(alert.ID); err != nil {
		return err
	}
	log.Infof("[Lifecycle] Alert %s deleted, pending reports resolved", uuid)
	return nil
}

// ResolveReport marks a report as handled without touching the reported item.
func (c *Controller) ResolveReport(uuid string) error {
	key := "report:" + uuid
	if err := c.begin(key); err != nil {
		return err
	}
	defer c.end(key)

	ok, err := c.reports.Resolve(uuid)
	if err != nil {
		return err
	}
	if !ok {
		if _, err := c.reports.GetByUUID(uuid); err != nil {
			return mapLookupError(err)
		}
		return ErrAlreadyTerminal
	}
	log.Infof("[Lifecycle] Report %s resolved", uuid)
	return nil
}

// transitionPost runs the compare-and-transition and, when it did not take,
// re-reads the post to tell the caller what actually stood in the way.
func (c *Controller) transitionPost(uuid, from, to, reason string) error {
	ok, err := c.posts.TransitionStatus(uuid, from, to, reason)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	post, err := c.posts.GetByUUID(uuid)
	if err != nil {
		return mapLookupError(err)
	}
	// Already in the target state means the action was applied before, which
	// is a conflict for the caller, not a bad request.
	if post.Status == to || post.IsTerminal() {
		return ErrAlreadyTerminal
	}
	return ErrInvalidTarget
}

func (c *Controller) classifyAlertFailure(uuid string) error {
	alert, err := c.alerts.GetByUUID(uuid)
	if err != nil {
		return mapLookupError(err)
	}
	if alert.IsTerminal() {
		return ErrAlreadyTerminal
	}
	return ErrInvalidTarget
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

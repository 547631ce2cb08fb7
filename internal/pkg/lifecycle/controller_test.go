package lifecycle_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lazos-app/lazos-api/app/models"
	"github.com/lazos-app/lazos-api/app/repository"
	"github.com/lazos-app/lazos-api/internal/pkg/lifecycle"
	"github.com/lazos-app/lazos-api/internal/pkg/moderation"
)

// fakePostRepo is an in-memory PostRepository with the same atomicity
// guarantees as the SQL implementation.
type fakePostRepo struct {
	mu     sync.Mutex
	posts  map[string]*models.Post
	nextID uint
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*models.Post)}
}

func (f *fakePostRepo) Create(post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	post.ID = f.nextID
	if post.UUID == "" {
		post.UUID = uuid.New().String()
	}
	clone := *post
	f.posts[post.UUID] = &clone
	return nil
}

func (f *fakePostRepo) GetByUUID(id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *post
	return &clone, nil
}

func (f *fakePostRepo) List(filter repository.PostFilter) ([]models.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Post
	for _, p := range f.posts {
		if filter.Status == "" || p.Status == filter.Status {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakePostRepo) ListByStatus(status string, offset, limit int) ([]models.Post, error) {
	posts, _, err := f.List(repository.PostFilter{Status: status})
	return posts, err
}

func (f *fakePostRepo) Search(filter repository.SearchFilter) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	term := strings.ToLower(filter.Term)
	var out []models.Post
	for _, p := range f.posts {
		if p.Status != models.StatusActive {
			continue
		}
		if strings.Contains(strings.ToLower(p.Description), term) ||
			strings.Contains(strings.ToLower(p.LocationName), term) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePostRepo) TransitionStatus(id, from, to, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok || post.Status != from {
		return false, nil
	}
	post.Status = to
	if reason != "" {
		post.ModerationReason = reason
	}
	now := time.Now()
	post.ModerationDate = &now
	return true, nil
}

func (f *fakePostRepo) CountByStatus(status string) (int64, error) {
	posts, _, err := f.List(repository.PostFilter{Status: status})
	return int64(len(posts)), err
}

func (f *fakePostRepo) AddImages(postID uint, images []models.PostImage) error {
	return nil
}

// fakeAlertRepo is an in-memory AlertRepository.
type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts map[string]*models.Alert
	nextID uint
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: make(map[string]*models.Alert)}
}

func (f *fakeAlertRepo) Create(alert *models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	alert.ID = f.nextID
	if alert.UUID == "" {
		alert.UUID = uuid.New().String()
	}
	clone := *alert
	f.alerts[alert.UUID] = &clone
	return nil
}

func (f *fakeAlertRepo) GetByUUID(id string) (*models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	alert, ok := f.alerts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *alert
	return &clone, nil
}

func (f *fakeAlertRepo) List(filter repository.AlertFilter) ([]models.Alert, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Alert
	for _, a := range f.alerts {
		if filter.Status == "" || a.Status == filter.Status {
			out = append(out, *a)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeAlertRepo) Search(filter repository.SearchFilter) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	term := strings.ToLower(filter.Term)
	var out []models.Alert
	for _, a := range f.alerts {
		if a.Status != models.StatusActive {
			continue
		}
		if strings.Contains(strings.ToLower(a.Description), term) ||
			strings.Contains(strings.ToLower(a.LocationName), term) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAlertRepo) TransitionStatus(id, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	alert, ok := f.alerts[id]
	if !ok || alert.Status != from {
		return false, nil
	}
	alert.Status = to
	return true, nil
}

func (f *fakeAlertRepo) CountByStatus(status string) (int64, error) {
	alerts, _, err := f.List(repository.AlertFilter{Status: status})
	return int64(len(alerts)), err
}

// fakeReportRepo is an in-memory ReportRepository.
type fakeReportRepo struct {
	mu      sync.Mutex
	reports map[string]*models.Report
	nextID  uint
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[string]*models.Report)}
}

func (f *fakeReportRepo) Create(report *models.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	report.ID = f.nextID
	if report.UUID == "" {
		report.UUID = uuid.New().String()
	}
	if report.Status == "" {
		report.Status = models.ReportStatusPending
	}
	clone := *report
	f.reports[report.UUID] = &clone
	return nil
}

func (f *fakeReportRepo) GetByUUID(id string) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *report
	return &clone, nil
}

func (f *fakeReportRepo) ListByStatus(status string, offset, limit int) ([]models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Report
	for _, r := range f.reports {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReportRepo) Resolve(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok || report.Status != models.ReportStatusPending {
		return false, nil
	}
	now := time.Now()
	report.Status = models.ReportStatusResolved
	report.ResolvedAt = &now
	return true, nil
}

func (f *fakeReportRepo) ResolveAllForPost(postID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, r := range f.reports {
		if r.PostID != nil && *r.PostID == postID && r.Status == models.ReportStatusPending {
			r.Status = models.ReportStatusResolved
			r.ResolvedAt = &now
		}
	}
	return nil
}

func (f *fakeReportRepo) ResolveAllForAlert(alertID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, r := range f.reports {
		if r.AlertID != nil && *r.AlertID == alertID && r.Status == models.ReportStatusPending {
			r.Status = models.ReportStatusResolved
			r.ResolvedAt = &now
		}
	}
	return nil
}

func (f *fakeReportRepo) CountPendingForPost(postID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.reports {
		if r.PostID != nil && *r.PostID == postID && r.Status == models.ReportStatusPending {
			count++
		}
	}
	return count, nil
}

func (f *fakeReportRepo) CountPendingForAlert(alertID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.reports {
		if r.AlertID != nil && *r.AlertID == alertID && r.Status == models.ReportStatusPending {
			count++
		}
	}
	return count, nil
}

func (f *fakeReportRepo) CountByStatus(status string) (int64, error) {
	reports, err := f.ListByStatus(status, 0, 0)
	return int64(len(reports)), err
}

type fixture struct {
	posts      *fakePostRepo
	alerts     *fakeAlertRepo
	reports    *fakeReportRepo
	controller *lifecycle.Controller
}

func newFixture() *fixture {
	posts := newFakePostRepo()
	alerts := newFakeAlertRepo()
	reports := newFakeReportRepo()
	controller := lifecycle.NewController(&repository.Repositories{
		Post:   posts,
		Alert:  alerts,
		Report: reports,
	})
	return &fixture{posts: posts, alerts: alerts, reports: reports, controller: controller}
}

func (fx *fixture) seedPost(t *testing.T, status string) *models.Post {
	t.Helper()
	post := &models.Post{
		Description: "Vi un perrito marrón con collar rojo",
		AnimalType:  models.AnimalDog,
		Size:        models.SizeMedium,
		Status:      status,
	}
	require.NoError(t, fx.posts.Create(post))
	return post
}

func (fx *fixture) seedReportForPost(t *testing.T, postID uint, status string) *models.Report {
	t.Helper()
	report := &models.Report{
		PostID: &postID,
		Reason: models.ReportReasonSpam,
		Status: status,
	}
	require.NoError(t, fx.reports.Create(report))
	return report
}

func TestStatusForAction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.StatusActive, lifecycle.StatusForAction(moderation.ActionPublish))
	assert.Equal(t, models.StatusPendingApproval, lifecycle.StatusForAction(moderation.ActionHoldForReview))
}

func TestApprovePost(t *testing.T) {
	t.Parallel()

	t.Run("pending post becomes active", func(t *testing.T) {
		t.Parallel()
		fx := newFixture()
		post := fx.seedPost(t, models.StatusPendingApproval)

		require.NoError(t, fx.controller.ApprovePost(post.UUID))

		got, err := fx.posts.GetByUUID(post.UUID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, got.Status)
	})

	t.Run("approving an already active post is a conflict", func(t *testing.T) {
		t.Parallel()
		fx := newFixture()
		post := fx.seedPost(t, models.StatusActive)

		err := fx.controller.ApprovePost(post.UUID)
		assert.ErrorIs(t, err, lifecycle.ErrAlreadyTerminal)

		got, lookupErr := fx.posts.GetByUUID(post.UUID)
		require.NoError(t, lookupErr)
		assert.Equal(t, models.StatusActive, got.Status)
	})

	t.Run("rejected post is terminal", func(t *testing.T) {
		t.Parallel()
		fx := newFixture()
		post := fx.seedPost(t, models.StatusRejected)

		err := fx.controller.ApprovePost(post.UUID)
		assert.ErrorIs(t, err, lifecycle.ErrAlreadyTerminal)
	})

	t.Run("missing post is not found", func(t *testing.T) {
		t.Parallel()
		fx := newFixture()

		err := fx.controller.ApprovePost(uuid.New().String())
		assert.ErrorIs(t, err, lifecycle.ErrNotFound)
	})
}

func TestRejectPostStoresReason(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	post := fx.seedPost(t, models.StatusPendingApproval)

	require.NoError(t, fx.controller.RejectPost(post.UUID, "contenido inapropiado"))

	got, err := fx.posts.GetByUUID(post.UUID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Equal(t, "contenido inapropiado", got.ModerationReason)
	assert.NotNil(t, got.ModerationDate)
}

func TestDeletePostResolvesPendingReports(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	post := fx.seedPost(t, models.StatusActive)
	other := fx.seedPost(t, models.StatusActive)
	first := fx.seedReportForPost(t, post.ID, models.ReportStatusPending)
	second := fx.seedReportForPost(t, post.ID, models.ReportStatusPending)
	unrelated := fx.seedReportForPost(t, other.ID, models.ReportStatusPending)

	require.NoError(t, fx.controller.DeletePost(post.UUID, "reportado por la comunidad"))

	got, err := fx.posts.GetByUUID(post.UUID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, got.Status)

	for _, id := range []string{first.UUID, second.UUID} {
		report, err := fx.reports.GetByUUID(id)
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusResolved, report.Status)
		assert.NotNil(t, report.ResolvedAt)
	}

	report, err := fx.reports.GetByUUID(unrelated.UUID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, report.Status, "reports against other posts stay pending")
}

func TestDeletePostTwiceIsTerminal(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	post := fx.seedPost(t, models.StatusActive)

	require.NoError(t, fx.controller.DeletePost(post.UUID, ""))
	err := fx.controller.DeletePost(post.UUID, "")
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyTerminal)
}

func TestDeletePendingPost(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	post := fx.seedPost(t, models.StatusPendingApproval)

	require.NoError(t, fx.controller.DeletePost(post.UUID, ""))

	got, err := fx.posts.GetByUUID(post.UUID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, got.Status)
}

func TestDeleteAlertResolvesPendingReports(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	alert := &models.Alert{Description: "Perro corriendo hacia el norte", AnimalType: models.AnimalDog}
	require.NoError(t, fx.controller.CreateAlert(alert))

	report := &models.Report{AlertID: &alert.ID, Reason: models.ReportReasonOther}
	require.NoError(t, fx.reports.Create(report))

	require.NoError(t, fx.controller.DeleteAlert(alert.UUID))

	got, err := fx.alerts.GetByUUID(alert.UUID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, got.Status)

	resolved, err := fx.reports.GetByUUID(report.UUID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, resolved.Status)
}

func TestResolveReport(t *testing.T) {
	t.Parallel()

	t.Run("leaves the reported post untouched", func(t *testing.T) {
		t.Parallel()
		fx := newFixture()
		post := fx.seedPost(t, models.StatusActive)
		report := fx.seedReportForPost(t, post.ID, models.ReportStatusPending)

		require.NoError(t, fx.controller.ResolveReport(report.UUID))

		got, err := fx.posts.GetByUUID(post.UUID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, got.Status)
	})

	t.Run("resolving twice is terminal", func(t *testing.T) {
		t.Parallel()
		fx := newFixture()
		post := fx.seedPost(t, models.StatusActive)
		report := fx.seedReportForPost(t, post.ID, models.ReportStatusPending)

		require.NoError(t, fx.controller.ResolveReport(report.UUID))
		err := fx.controller.ResolveReport(report.UUID)
		assert.ErrorIs(t, err, lifecycle.ErrAlreadyTerminal)
	})

	t.Run("missing report is not found", func(t *testing.T) {
		t.Parallel()
		fx := newFixture()

		err := fx.controller.ResolveReport(uuid.New().String())
		assert.ErrorIs(t, err, lifecycle.ErrNotFound)
	})
}

func TestConcurrentResolveHasExactlyOneWinner(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	post := fx.seedPost(t, models.StatusActive)
	report := fx.seedReportForPost(t, post.ID, models.ReportStatusPending)

	const workers = 16
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = fx.controller.ResolveReport(report.UUID)
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			assert.True(t,
				err == lifecycle.ErrActionInProgress || err == lifecycle.ErrAlreadyTerminal,
				"unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one caller may perform the transition")
}

func TestCreatePostSetsStatusFromDecision(t *testing.T) {
	t.Parallel()

	fx := newFixture()

	published := &models.Post{Description: "d", AnimalType: models.AnimalDog, Size: models.SizeSmall}
	require.NoError(t, fx.controller.CreatePost(published, moderation.ActionPublish))
	assert.Equal(t, models.StatusActive, published.Status)

	held := &models.Post{Description: "d", AnimalType: models.AnimalCat, Size: models.SizeSmall}
	require.NoError(t, fx.controller.CreatePost(held, moderation.ActionHoldForReview))
	assert.Equal(t, models.StatusPendingApproval, held.Status)
}

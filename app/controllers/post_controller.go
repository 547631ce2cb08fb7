package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lazos-app/lazos-api/app/models"
	"github.com/lazos-app/lazos-api/app/repository"
	"github.com/lazos-app/lazos-api/internal/pkg/imageprocessor"
	"github.com/lazos-app/lazos-api/internal/pkg/moderation"
)

const (
	maxUploadBytes     = 10 << 20 // 10 MB per photo
	maxImagesPerPost   = 3
	sightingDateLayout = "2006-01-02"
)

type createPostRequest struct {
	Description   string  `form:"description" validate:"required"`
	AnimalType    string  `form:"animal_type" validate:"required,oneof=dog cat other"`
	Size          string  `form:"size" validate:"required,oneof=small medium large"`
	Sex           string  `form:"sex" validate:"omitempty,oneof=male female unknown"`
	Latitude      float64 `form:"latitude" validate:"required,latitude"`
	Longitude     float64 `form:"longitude" validate:"required,longitude"`
	LocationName  string  `form:"location_name" validate:"omitempty,max=200"`
	SightingDate  string  `form:"sighting_date" validate:"omitempty"`
	ContactMethod string  `form:"contact_method" validate:"omitempty,max=200"`
}

// HandleCreatePost accepts a new sighting with 1-3 photos, runs the
// moderation pipeline and stores the post in the state the decision dictates.
func HandleCreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "invalid form data")
	}
	if err := validate.Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	form, err := c.MultipartForm()
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "multipart form required")
	}
	files := form.File["images"]
	if len(files) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "at least one image is required")
	}
	if len(files) > maxImagesPerPost {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request",
			fmt.Sprintf("at most %d images are allowed", maxImagesPerPost))
	}

	imageData := make([][]byte, 0, len(files))
	for _, file := range files {
		if file.Size > maxUploadBytes {
			return errorJSON(c, fiber.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Sprintf("image %s exceeds the 10 MB limit", file.Filename))
		}
		data, err := readUpload(file)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "bad_request",
				fmt.Sprintf("could not read image %s", file.Filename))
		}
		imageData = append(imageData, data)
	}

	sightingDate, err := resolveSightingDate(req.SightingDate, imageData)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "sighting_date must be YYYY-MM-DD")
	}

	decision := engine.Decide(c.Context(), moderation.Submission{
		Text:   req.Description,
		Images: imageData,
	})
	if decision.Action == moderation.ActionReject {
		return rejectionResponse(c, decision)
	}

	if store == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "storage_unavailable", "image storage is not configured")
	}

	ipv4, ipv6 := GetClientIP(c)
	post := &models.Post{
		Description:   moderation.Sanitize(req.Description),
		AnimalType:    req.AnimalType,
		Size:          req.Size,
		Sex:           defaultString(req.Sex, models.SexUnknown),
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		LocationName:  req.LocationName,
		SightingDate:  sightingDate,
		ContactMethod: req.ContactMethod,
		SubmitterIPv4: ipv4,
		SubmitterIPv6: ipv6,
	}
	post.ModerationReason = moderationNote(decision.Reasons)

	if err := control.CreatePost(post, decision.Action); err != nil {
		log.Errorf("[PostController] Failed to create post: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "could not store post")
	}

	images, err := storePostImages(c, post, imageData)
	if err != nil {
		log.Errorf("[PostController] Failed to store images for post %s: %v", post.UUID, err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "could not store images")
	}
	post.Images = images

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post": post,
		"moderation": fiber.Map{
			"status":  post.Status,
			"reasons": decision.Reasons,
		},
	})
}

// storePostImages processes the uploads and persists one PostImage per photo
func storePostImages(c *fiber.Ctx, post *models.Post, imageData [][]byte) ([]models.PostImage, error) {
	now := time.Now()
	images := make([]models.PostImage, 0, len(imageData))
	for i, data := range imageData {
		processed, err := processor.Process(data)
		if err != nil {
			return nil, fmt.Errorf("processing image %d: %w", i, err)
		}

		displayKey := storeCfg.ObjectKey(fmt.Sprintf("%s-%d", post.UUID, i), "display", now)
		thumbKey := storeCfg.ObjectKey(fmt.Sprintf("%s-%d", post.UUID, i), "thumb", now)

		displayURL, err := store.Upload(c.Context(), displayKey, processed.Display)
		if err != nil {
			return nil, fmt.Errorf("uploading image %d: %w", i, err)
		}
		thumbURL, err := store.Upload(c.Context(), thumbKey, processed.Thumbnail)
		if err != nil {
			return nil, fmt.Errorf("uploading thumbnail %d: %w", i, err)
		}

		images = append(images, models.PostImage{
			ImageURL:     displayURL,
			ThumbnailURL: thumbURL,
			ObjectKey:    displayKey,
			ThumbnailKey: thumbKey,
			DisplayOrder: i,
			IsPrimary:    i == 0,
		})
	}

	repo := repository.GetGlobalFactory().GetPostRepository()
	if err := repo.AddImages(post.ID, images); err != nil {
		return nil, err
	}
	return images, nil
}

// HandleListPosts returns published posts with optional filters
func HandleListPosts(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	filter := repository.PostFilter{
		Status:     models.StatusActive,
		AnimalType: c.Query("animal_type"),
		Size:       c.Query("size"),
		Sex:        c.Query("sex"),
		Offset:     offset,
		Limit:      limit,
	}
	if sort := c.Query("sort"); sort != "" {
		if sort != repository.SortCreated && sort != repository.SortSightingDate {
			return errorJSON(c, fiber.StatusBadRequest, "bad_request", "sort must be created_at or sighting_date")
		}
		filter.Sort = sort
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(sightingDateLayout, since)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "bad_request", "since must be YYYY-MM-DD")
		}
		filter.Since = &t
	}

	posts, total, err := repository.GetGlobalFactory().GetPostRepository().List(filter)
	if err != nil {
		log.Errorf("[PostController] Failed to list posts: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "could not list posts")
	}

	return c.JSON(fiber.Map{
		"data":  posts,
		"total": total,
	})
}

// HandleGetPost returns a single published post. Pending, rejected and
// deleted posts are not visible here.
func HandleGetPost(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	post, err := repository.GetGlobalFactory().GetPostRepository().GetByUUID(uuid)
	if err != nil || post.Status != models.StatusActive {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "post not found")
	}
	return c.JSON(post)
}

// resolveSightingDate parses the submitted date, or prefills it from the EXIF
// capture date of the first photo that carries one, then falls back to today.
func resolveSightingDate(submitted string, imageData [][]byte) (time.Time, error) {
	if submitted != "" {
		return time.Parse(sightingDateLayout, submitted)
	}
	for _, data := range imageData {
		if hints := imageprocessor.ExtractHints(data); hints.TakenAt != nil {
			return *hints.TakenAt, nil
		}
	}
	return time.Now(), nil
}

// moderationNote folds all decision reasons into the single stored column,
// clipped to the column width.
func moderationNote(reasons []string) string {
	note := strings.Join(reasons, "; ")
	if runes := []rune(note); len(runes) > 500 {
		note = string(runes[:500])
	}
	return note
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

package controllers

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lazos-app/lazos-api/app/models"
	"github.com/lazos-app/lazos-api/app/repository"
)

const (
	earthRadiusKm = 6371.0
	maxRadiusKm   = 100.0
)

// proximity holds the optional coordinate parameters of a search request.
// A zero RadiusKm means "order by distance but do not cut off".
type proximity struct {
	Enabled  bool
	Lat      float64
	Lon      float64
	RadiusKm float64
}

type postSearchResult struct {
	models.Post
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type alertSearchResult struct {
	models.Alert
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// HandleSearch runs the unified free-text search across posts and alerts.
// With lat/lon the results carry distances and come back nearest first;
// radius_km additionally drops everything farther away.
func HandleSearch(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "q is required")
	}
	kind := c.Query("type", "all")
	if kind != "posts" && kind != "alerts" && kind != "all" {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "type must be posts, alerts or all")
	}
	prox, err := parseProximity(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	offset, limit := parsePagination(c)
	filter := repository.SearchFilter{Term: term, Offset: offset, Limit: limit}
	repos := repository.GetGlobalFactory().GetRepositories()

	posts := []postSearchResult{}
	if kind == "posts" || kind == "all" {
		found, err := repos.Post.Search(filter)
		if err != nil {
			log.Errorf("[SearchController] Post search failed: %v", err)
			return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "search failed")
		}
		posts = rankPosts(found, prox)
	}

	alerts := []alertSearchResult{}
	if kind == "alerts" || kind == "all" {
		found, err := repos.Alert.Search(filter)
		if err != nil {
			log.Errorf("[SearchController] Alert search failed: %v", err)
			return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "search failed")
		}
		alerts = rankAlerts(found, prox)
	}

	return c.JSON(fiber.Map{
		"posts":        posts,
		"alerts":       alerts,
		"total_posts":  len(posts),
		"total_alerts": len(alerts),
	})
}

// parseProximity reads lat/lon/radius_km. Both coordinates are required for a
// proximity search; a radius without coordinates is ignored.
func parseProximity(c *fiber.Ctx) (proximity, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		return proximity{}, nil
	}
	if latStr == "" || lonStr == "" {
		return proximity{}, errors.New("lat and lon must be provided together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return proximity{}, errors.New("lat must be a latitude")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return proximity{}, errors.New("lon must be a longitude")
	}

	prox := proximity{Enabled: true, Lat: lat, Lon: lon}
	if radiusStr := c.Query("radius_km"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius < 0 || radius > maxRadiusKm {
			return proximity{}, errors.New("radius_km must be between 0 and 100")
		}
		prox.RadiusKm = radius
	}
	return prox, nil
}

func rankPosts(posts []models.Post, prox proximity) []postSearchResult {
	results := make([]postSearchResult, 0, len(posts))
	for _, post := range posts {
		result := postSearchResult{Post: post}
		if prox.Enabled {
			distance := roundKm(haversineKm(prox.Lat, prox.Lon, post.Latitude, post.Longitude))
			if prox.RadiusKm > 0 && distance > prox.RadiusKm {
				continue
			}
			result.DistanceKm = &distance
		}
		results = append(results, result)
	}
	if prox.Enabled {
		sort.Slice(results, func(i, j int) bool {
			return *results[i].DistanceKm < *results[j].DistanceKm
		})
	}
	return results
}

func rankAlerts(alerts []models.Alert, prox proximity) []alertSearchResult {
	results := make([]alertSearchResult, 0, len(alerts))
	for _, alert := range alerts {
		result := alertSearchResult{Alert: alert}
		if prox.Enabled {
			distance := roundKm(haversineKm(prox.Lat, prox.Lon, alert.Latitude, alert.Longitude))
			if prox.RadiusKm > 0 && distance > prox.RadiusKm {
				continue
			}
			result.DistanceKm = &distance
		}
		results = append(results, result)
	}
	if prox.Enabled {
		sort.Slice(results, func(i, j int) bool {
			return *results[i].DistanceKm < *results[j].DistanceKm
		})
	}
	return results
}

// haversineKm returns the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

func roundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

package router

import (
	"net"
	"strconv"

	"github.com/gofiber/storage/redis"

	"github.com/lazos-app/lazos-api/internal/pkg/cache"
	"github.com/lazos-app/lazos-api/internal/pkg/env"
)

// newLimiterStorage builds a Redis-backed store for the rate limiter so
// counters survive restarts and are shared across instances. Database 1 is
// used, the cache itself runs on database 0.
func newLimiterStorage() *redis.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")

	if client := cache.GetClient(); client != nil {
		addr := client.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := client.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
}

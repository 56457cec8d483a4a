package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 3 * time.Second

var errRedisDisabled = errors.New("redis not configured")

// LivenessCheck godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health/live [get]
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "up", "time": time.Now().UTC()})
}

// ReadinessCheck godoc
// @Summary Readiness probe
// @Description Pings PostgreSQL and Redis. Either one failing answers 503.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /health/ready [get]
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	var dbErr, redisErr error
	var g errgroup.Group
	g.Go(func() error {
		dbErr = s.pingDatabase(ctx)
		return nil
	})
	g.Go(func() error {
		redisErr = s.pingRedis(ctx)
		return nil
	})
	_ = g.Wait()

	status, overall := fiber.StatusOK, "ready"
	if dbErr != nil || redisErr != nil {
		status, overall = fiber.StatusServiceUnavailable, "not ready"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": probeResult(dbErr),
			"redis":    probeResult(redisErr),
		},
	})
}

func (s *Server) pingDatabase(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Server) pingRedis(ctx context.Context) error {
	if s.redis == nil {
		return errRedisDisabled
	}
	return s.redis.Ping(ctx).Err()
}

func probeResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errRedisDisabled):
		return "disabled"
	default:
		return "unreachable"
	}
}

package middleware

import (
	"errors"
	"time"

	"tech-advisor/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request count and latency by route pattern, so that
// /products/1 and /products/2 share a series.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		endpoint := c.Route().Path
		if endpoint == "" || endpoint == "/" {
			endpoint = c.Path()
		}
		metrics.RecordAPIRequest(c.Method(), endpoint, status, time.Since(start))
		return err
	}
}

package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"casedocs/internal/service"
)

// DashboardStats returns the aggregate summary for the dashboard: totals,
// this-month count, attachment count, and the top-source ranking. The month
// bucket is evaluated against the server's local time.
func DashboardStats(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := docSvc.Stats(c.UserContext(), time.Now())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(sum)
	}
}

package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"Kestrel/Inspections"
	"Kestrel/Models"
)

// AuditResponse pages through the local inspection audit trail.
type AuditResponse struct {
	Logs       []Models.InspectionLog `json:"logs"`
	TotalLogs  int64                  `json:"total_logs"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
}

// GetInspectionLogs lists the audit trail with optional plate, direction
// and date filters.
func GetInspectionLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	query := Models.DB.Model(&Models.InspectionLog{})

	if plate := c.Query("plate"); plate != "" {
		query = query.Where("plate = ?", Inspections.NormalizePlate(plate))
	}
	if direction := c.Query("direction"); direction != "" {
		query = query.Where("direction = ?", direction)
	}
	if branch := c.Query("branch"); branch != "" {
		query = query.Where("branch = ?", branch)
	}
	if from := c.Query("date_from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date_from format. Use YYYY-MM-DD"})
		}
		query = query.Where("created_at >= ?", parsed)
	}
	if to := c.Query("date_to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date_to format. Use YYYY-MM-DD"})
		}
		query = query.Where("created_at < ?", parsed.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var logs []Models.InspectionLog
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return c.JSON(AuditResponse{
		Logs:       logs,
		TotalLogs:  total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// GetInspectionLogStats summarizes the audit trail for the dashboard
// widgets: totals per direction and report failures.
func GetInspectionLogStats(c *fiber.Ctx) error {
	type directionCount struct {
		Direction string `json:"direction"`
		Count     int64  `json:"count"`
	}

	var byDirection []directionCount
	err := Models.DB.Model(&Models.InspectionLog{}).
		Select("direction, count(*) as count").
		Group("direction").
		Scan(&byDirection).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var reportFailures int64
	Models.DB.Model(&Models.InspectionLog{}).
		Where("report_error <> ''").
		Count(&reportFailures)

	var openExits int64
	Models.DB.Model(&Models.InspectionLog{}).
		Where("direction = ? AND created_at >= ?", string(Inspections.DirectionExit), time.Now().AddDate(0, 0, -7)).
		Count(&openExits)

	return c.JSON(fiber.Map{
		"by_direction":    byDirection,
		"report_failures": reportFailures,
		"exits_last_week": openExits,
	})
}

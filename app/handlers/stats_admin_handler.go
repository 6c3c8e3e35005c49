// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/amirphl/Kusanagi/app/dto"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/gofiber/fiber/v3"
)

// StatsAdminHandlerInterface defines the contract for the admin statistics handlers
type StatsAdminHandlerInterface interface {
	ListStatistics(c fiber.Ctx) error
	ExportStatistics(c fiber.Ctx) error
}

// StatsAdminHandler exposes the usage counters to admins
type StatsAdminHandler struct {
	statsFlow businessflow.StatsFlow
}

// NewStatsAdminHandler creates a new admin statistics handler
func NewStatsAdminHandler(statsFlow businessflow.StatsFlow) *StatsAdminHandler {
	return &StatsAdminHandler{statsFlow: statsFlow}
}

func (h *StatsAdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *StatsAdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListStatistics returns a page of usage counters
// @Summary List Usage Statistics
// @Description List per-record usage counters, most recently updated first
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param model_name query string false "Filter by model name (user, post, comment)"
// @Success 200 {object} dto.APIResponse{data=dto.StatsListResponse} "Statistics"
// @Failure 400 {object} dto.APIResponse "Invalid pagination"
// @Failure 403 {object} dto.APIResponse "Admin privileges required"
// @Router /api/v1/admin/statistics [get]
func (h *StatsAdminHandler) ListStatistics(c fiber.Ctx) error {
	page, pageSize := parsePagination(c)

	var modelName *string
	if name := c.Query("model_name"); name != "" {
		modelName = &name
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.statsFlow.ListStatistics(ctx, modelName, page, pageSize)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List statistics failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list statistics", "LIST_STATS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Statistics loaded", result)
}

// ExportStatistics downloads all usage counters as an Excel workbook
// @Summary Export Usage Statistics
// @Description Download every usage counter as an xlsx file
// @Tags Admin
// @Produce application/octet-stream
// @Security BearerAuth
// @Success 200 {string} string "Binary file"
// @Failure 403 {object} dto.APIResponse "Admin privileges required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/statistics/export [get]
func (h *StatsAdminHandler) ExportStatistics(c fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	filename, data, err := h.statsFlow.ExportStatistics(ctx)
	if err != nil {
		log.Println("Export statistics failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export statistics", "EXPORT_STATS_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// Package businessflow contains the core business logic and use cases for the blog service
package businessflow

import (
	"context"
	"strconv"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/xuri/excelize/v2"
)

// StatsFlow exposes the usage counters to admins
type StatsFlow interface {
	ListStatistics(ctx context.Context, modelName *string, page, pageSize int) (*dto.StatsListResponse, error)
	ExportStatistics(ctx context.Context) (string, []byte, error)
}

// StatsFlowImpl implements the statistics reporting flow
type StatsFlowImpl struct {
	statsRepo repository.UsageStatisticRepository
}

// NewStatsFlow creates a new statistics flow instance
func NewStatsFlow(statsRepo repository.UsageStatisticRepository) StatsFlow {
	return &StatsFlowImpl{statsRepo: statsRepo}
}

// ListStatistics returns a page of usage counters, most recently updated
// first, optionally filtered by model name
func (sf *StatsFlowImpl) ListStatistics(ctx context.Context, modelName *string, page, pageSize int) (*dto.StatsListResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("LIST_STATS_FAILED", "Failed to list statistics", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > utils.MaxPageSize {
		return nil, NewBusinessError("LIST_STATS_FAILED", "Failed to list statistics", ErrInvalidPageSize)
	}

	filter := models.UsageStatisticFilter{ModelName: modelName}

	total, err := sf.statsRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_STATS_FAILED", "Failed to list statistics", err)
	}

	stats, err := sf.statsRepo.ByFilter(ctx, filter, "updated_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_STATS_FAILED", "Failed to list statistics", err)
	}

	items := make([]dto.UsageStatisticDTO, 0, len(stats))
	for _, stat := range stats {
		items = append(items, ToUsageStatisticDTO(*stat))
	}

	return &dto.StatsListResponse{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// ExportStatistics renders all usage counters as an Excel workbook
func (sf *StatsFlowImpl) ExportStatistics(ctx context.Context) (string, []byte, error) {
	stats, err := sf.statsRepo.ByFilter(ctx, models.UsageStatisticFilter{}, "model_name ASC, model_id ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_STATS_FAILED", "Failed to export statistics", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "usage_statistics"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"id", "model_name", "model_id", "update_count", "created_at", "updated_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, stat := range stats {
		record := []string{
			stat.ID,
			stat.ModelName,
			strconv.FormatUint(uint64(stat.ModelID), 10),
			strconv.FormatUint(stat.UpdateCount, 10),
			stat.CreatedAt.UTC().Format(time.RFC3339),
			stat.UpdatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := "usage_statistics.xlsx"
	return filename, buf.Bytes(), nil
}

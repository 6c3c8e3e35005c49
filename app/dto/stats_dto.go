// Package dto contains Data Transfer Objects for API request and response structures
package dto

// UsageStatisticDTO represents a usage counter row in admin API responses
type UsageStatisticDTO struct {
	ID          string `json:"id" example:"post:7"`
	ModelName   string `json:"model_name" example:"post"`
	ModelID     uint   `json:"model_id" example:"7"`
	UpdateCount uint64 `json:"update_count" example:"3"`
	CreatedAt   string `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt   string `json:"updated_at" example:"2024-01-15T11:00:00Z"`
}

// StatsListResponse represents a paginated list of usage counters
type StatsListResponse struct {
	Items    []UsageStatisticDTO `json:"items"`
	Page     int                 `json:"page" example:"1"`
	PageSize int                 `json:"page_size" example:"20"`
	Total    int64               `json:"total" example:"42"`
}

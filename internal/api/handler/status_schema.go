package handler

import "github.com/mosb/logistics-dashboard/internal/core/domain"

type locationStatusRequest struct {
	LocationID    string  `json:"location_id"`
	OccupancyRate float64 `json:"occupancy_rate" validate:"gte=0,lte=1"`
	StatusCode    string  `json:"status_code"    validate:"omitempty,oneof=OK WARNING CRITICAL"`
	LastUpdated   string  `json:"last_updated"`
}

type replaceStatusRequest struct {
	Items []locationStatusRequest `json:"items" validate:"dive"`
}

type statusListResponse struct {
	Items []domain.LocationStatus `json:"items"`
	Count int                     `json:"count"`
}

type locationCountResponse struct {
	LocationID string `json:"location_id"`
	Since      string `json:"since,omitempty"`
	Count      int    `json:"count"`
}

func (r locationStatusRequest) toDomain() domain.LocationStatus {
	return domain.LocationStatus{
		LocationID:    r.LocationID,
		OccupancyRate: r.OccupancyRate,
		StatusCode:    domain.StatusCode(r.StatusCode),
		LastUpdated:   r.LastUpdated,
	}
}

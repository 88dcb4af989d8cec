package domain

// StatusCode is the traffic-light state of a location.
type StatusCode string

const (
	StatusCodeOK       StatusCode = "OK"
	StatusCodeWarning  StatusCode = "WARNING"
	StatusCodeCritical StatusCode = "CRITICAL"
)

// LocationStatus is an independently pushed occupancy reading for a location.
type LocationStatus struct {
	LocationID    string     `json:"location_id"`
	OccupancyRate float64    `json:"occupancy_rate"`
	StatusCode    StatusCode `json:"status_code"`
	LastUpdated   string     `json:"last_updated"`
}

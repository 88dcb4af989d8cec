package domain

import "errors"

var ErrShipmentNotFound = errors.New("shipment not found")
var ErrForbidden = errors.New("access forbidden")

var (
	ErrMissingLocationID      = errors.New("location_id is required")
	ErrInvalidStatusTimestamp = errors.New("last_updated is not a valid timestamp")
	ErrStaleStatus            = errors.New("status update is older than the current one")
	ErrFutureStatus           = errors.New("status update is too far in the future")
)

var ErrMalformedGeofence = errors.New("malformed geofence")
var ErrReferenceUnavailable = errors.New("reference data unavailable")

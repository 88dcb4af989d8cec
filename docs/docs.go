// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/dashboard/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/events": {
            "get": {"tags": ["events"], "summary": "List zone-annotated events", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["events"], "summary": "Ingest live tracking events", "responses": {"202": {"description": "Accepted"}}}
        },
        "/api/shipments": {
            "get": {"tags": ["shipments"], "summary": "List shipment projections", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["shipments"], "summary": "Upsert shipment overrides", "responses": {"200": {"description": "OK"}}}
        },
        "/api/shipments/{shpt_no}": {
            "get": {"tags": ["shipments"], "summary": "Get the projection of one shipment", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/overlays/heatmap": {
            "get": {"tags": ["overlays"], "summary": "Weighted heatmap points", "responses": {"200": {"description": "OK"}}}
        },
        "/api/overlays/eta": {
            "get": {"tags": ["overlays"], "summary": "ETA uncertainty wedges", "responses": {"200": {"description": "OK"}}}
        },
        "/api/location-status": {
            "get": {"tags": ["location-status"], "summary": "Current location status board", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["location-status"], "summary": "Push one location status reading", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}},
            "put": {"tags": ["location-status"], "summary": "Replace the location status board", "responses": {"200": {"description": "OK"}}}
        },
        "/api/locations/{location_id}/events/count": {
            "get": {"tags": ["location-status"], "summary": "Count events tagged with a location", "responses": {"200": {"description": "OK"}}}
        },
        "/api/geofences": {
            "get": {"tags": ["reference"], "summary": "Geofence zones as a GeoJSON FeatureCollection", "responses": {"200": {"description": "OK"}}}
        },
        "/api/reference/reload": {
            "post": {"tags": ["reference"], "summary": "Reload locations, legs and geofences", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Logistics Dashboard API",
	Description:      "Geofence-aware live event state for the logistics dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Package fileref reads reference data from the CSV and GeoJSON files kept
// in the data directory. It is the fallback when the primary store is down.
package fileref

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/geofence"
)

const (
	LocationsFile = "locations.csv"
	LegsFile      = "legs.csv"
	GeofenceFile  = "geofence.json"
)

type locationRow struct {
	LocationID string  `validate:"required"`
	Type       string  `validate:"omitempty,oneof=MOSB SITE WH PORT BERTH"`
	Name       string  `validate:"required"`
	Lat        float64 `validate:"gte=-90,lte=90"`
	Lon        float64 `validate:"gte=-180,lte=180"`
}

type legRow struct {
	LegID          string `validate:"required"`
	ShipmentNo     string `validate:"required"`
	FromLocationID string `validate:"required"`
	ToLocationID   string `validate:"required"`
	Mode           string
	PlannedETD     string
	PlannedETA     string
}

// Loader implements ports.ReferenceSource over a directory.
type Loader struct {
	dir      string
	validate *validator.Validate
	log      zerolog.Logger
}

// NewLoader creates a Loader reading from dir.
func NewLoader(dir string, log zerolog.Logger) *Loader {
	return &Loader{dir: dir, validate: validator.New(), log: log}
}

// LoadReference reads all three files. Rows that fail validation are
// skipped with a warning; a missing or unreadable file is an error.
func (l *Loader) LoadReference(_ context.Context) (*domain.ReferenceData, error) {
	locations, err := l.locations()
	if err != nil {
		return nil, err
	}
	legs, err := l.legs()
	if err != nil {
		return nil, err
	}
	zones, err := l.geofences()
	if err != nil {
		return nil, err
	}
	return &domain.ReferenceData{Locations: locations, Legs: legs, Geofences: zones}, nil
}

func (l *Loader) locations() ([]domain.Location, error) {
	rows, err := readCSV(filepath.Join(l.dir, LocationsFile))
	if err != nil {
		return nil, err
	}

	out := make([]domain.Location, 0, len(rows))
	for i, r := range rows {
		row := locationRow{
			LocationID: r["location_id"],
			Type:       r["type"],
			Name:       r["name"],
		}
		var perr error
		row.Lat, perr = parseFloat(r["lat"])
		if perr == nil {
			row.Lon, perr = parseFloat(r["lon"])
		}
		if perr == nil {
			perr = l.validate.Struct(row)
		}
		if perr != nil {
			l.log.Warn().Err(perr).Int("row", i+2).Str("file", LocationsFile).Msg("skipping location row")
			continue
		}
		out = append(out, domain.Location{
			LocationID: row.LocationID,
			Type:       domain.ZoneKind(row.Type),
			Name:       row.Name,
			Lat:        row.Lat,
			Lon:        row.Lon,
		})
	}
	return out, nil
}

func (l *Loader) legs() ([]domain.Leg, error) {
	rows, err := readCSV(filepath.Join(l.dir, LegsFile))
	if err != nil {
		return nil, err
	}

	out := make([]domain.Leg, 0, len(rows))
	for i, r := range rows {
		row := legRow{
			LegID:          r["leg_id"],
			ShipmentNo:     r["shpt_no"],
			FromLocationID: r["from_location_id"],
			ToLocationID:   r["to_location_id"],
			Mode:           strings.ToUpper(r["mode"]),
			PlannedETD:     r["planned_etd"],
			PlannedETA:     r["planned_eta"],
		}
		if err := l.validate.Struct(row); err != nil {
			l.log.Warn().Err(err).Int("row", i+2).Str("file", LegsFile).Msg("skipping leg row")
			continue
		}
		out = append(out, domain.Leg{
			LegID:          row.LegID,
			ShipmentNo:     row.ShipmentNo,
			FromLocationID: row.FromLocationID,
			ToLocationID:   row.ToLocationID,
			Mode:           domain.TransportMode(row.Mode),
			PlannedETD:     row.PlannedETD,
			PlannedETA:     row.PlannedETA,
		})
	}
	return out, nil
}

func (l *Loader) geofences() ([]domain.GeofenceZone, error) {
	path := filepath.Join(l.dir, GeofenceFile)
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		l.log.Warn().Str("file", GeofenceFile).Msg("no geofence file, zones disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedGeofence, path, err)
	}
	return geofence.FromFeatureCollection(fc)
}

// readCSV returns the data rows keyed by lower-cased header.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	head, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for i, h := range head {
		head[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		row := make(map[string]string, len(head))
		for i, h := range head {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return f, nil
}

package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

const (
	collectionLocations = "locations"
	collectionLegs      = "legs"
	collectionGeofences = "geofences"
)

// geofenceDoc is the stored shape of a zone. Order preserves the position of
// the zone in the source collection, which decides overlaps.
type geofenceDoc struct {
	ID       string      `bson:"_id"`
	Kind     string      `bson:"kind"`
	Name     string      `bson:"name,omitempty"`
	Order    int         `bson:"order"`
	Geometry geometryDoc `bson:"geometry"`
}

// geometryDoc is a GeoJSON geometry sub-document.
type geometryDoc struct {
	Type        string        `bson:"type"`
	Coordinates bson.RawValue `bson:"coordinates"`
}

// ReferenceRepository reads reference data from MongoDB.
type ReferenceRepository struct {
	db *mongo.Database
}

// NewReferenceRepository creates a ReferenceRepository.
func NewReferenceRepository(db *mongo.Database) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// LoadReference reads the three collections in full.
func (r *ReferenceRepository) LoadReference(ctx context.Context) (*domain.ReferenceData, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ref domain.ReferenceData

	if err := r.findAll(ctx, collectionLocations, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}), &ref.Locations); err != nil {
		return nil, err
	}
	if err := r.findAll(ctx, collectionLegs, options.Find().SetSort(bson.D{{Key: "shpt_no", Value: 1}, {Key: "planned_etd", Value: 1}}), &ref.Legs); err != nil {
		return nil, err
	}

	var docs []geofenceDoc
	if err := r.findAll(ctx, collectionGeofences, options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}}), &docs); err != nil {
		return nil, err
	}
	ref.Geofences = make([]domain.GeofenceZone, 0, len(docs))
	for _, d := range docs {
		z, err := d.zone()
		if err != nil {
			return nil, err
		}
		ref.Geofences = append(ref.Geofences, z)
	}
	return &ref, nil
}

func (r *ReferenceRepository) findAll(ctx context.Context, collection string, opts *options.FindOptions, out any) error {
	cur, err := r.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

// EnsureIndexes creates the lookup indexes used by LoadReference.
func (r *ReferenceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.db.Collection(collectionLegs).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "shpt_no", Value: 1}, {Key: "planned_etd", Value: 1}},
	}); err != nil {
		return fmt.Errorf("legs index: %w", err)
	}
	if _, err := r.db.Collection(collectionGeofences).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "order", Value: 1}},
	}); err != nil {
		return fmt.Errorf("geofences index: %w", err)
	}
	return nil
}

func (d geofenceDoc) zone() (domain.GeofenceZone, error) {
	g, err := d.Geometry.geometry()
	if err != nil {
		return domain.GeofenceZone{}, fmt.Errorf("geofence %s: %w", d.ID, err)
	}
	return domain.GeofenceZone{
		ID:       d.ID,
		Kind:     domain.ZoneKind(d.Kind),
		Name:     d.Name,
		Geometry: g,
	}, nil
}

func (g geometryDoc) geometry() (orb.Geometry, error) {
	switch g.Type {
	case "Polygon":
		var coords [][][]float64
		if err := g.Coordinates.Unmarshal(&coords); err != nil {
			return nil, fmt.Errorf("%w: polygon coordinates: %v", domain.ErrMalformedGeofence, err)
		}
		return toPolygon(coords), nil
	case "MultiPolygon":
		var coords [][][][]float64
		if err := g.Coordinates.Unmarshal(&coords); err != nil {
			return nil, fmt.Errorf("%w: multipolygon coordinates: %v", domain.ErrMalformedGeofence, err)
		}
		mp := make(orb.MultiPolygon, 0, len(coords))
		for _, p := range coords {
			mp = append(mp, toPolygon(p))
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("%w: unsupported geometry %q", domain.ErrMalformedGeofence, g.Type)
	}
}

func toPolygon(coords [][][]float64) orb.Polygon {
	poly := make(orb.Polygon, 0, len(coords))
	for _, ring := range coords {
		r := make(orb.Ring, 0, len(ring))
		for _, pt := range ring {
			if len(pt) < 2 {
				continue
			}
			r = append(r, orb.Point{pt[0], pt[1]})
		}
		poly = append(poly, r)
	}
	return poly
}

package geometry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SRID is the only coordinate reference accepted at the API boundary.
const SRID = 4326

// GeoJSON is a PostGIS geometry column carried as a GeoJSON value in Go.
// It writes itself through ST_GeomFromGeoJSON and scans back from EWKB,
// so business logic never sees raw wire encodings.
type GeoJSON struct {
	Geometry orb.Geometry
}

func FromOrb(g orb.Geometry) GeoJSON { return GeoJSON{Geometry: g} }

func (g GeoJSON) IsZero() bool { return g.Geometry == nil }

func (g GeoJSON) MarshalJSON() ([]byte, error) {
	if g.Geometry == nil {
		return []byte("null"), nil
	}
	return geojson.NewGeometry(g.Geometry).MarshalJSON()
}

func (g *GeoJSON) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		g.Geometry = nil
		return nil
	}
	geom, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return fmt.Errorf("decode geojson geometry: %w", err)
	}
	g.Geometry = geom.Geometry()
	return nil
}

func (g GeoJSON) GormDataType() string {
	return fmt.Sprintf("geometry(Geometry,%d)", SRID)
}

func (g GeoJSON) GormValue(_ context.Context, _ *gorm.DB) clause.Expr {
	if g.Geometry == nil {
		return clause.Expr{SQL: "NULL"}
	}
	data, err := geojson.NewGeometry(g.Geometry).MarshalJSON()
	if err != nil {
		return clause.Expr{SQL: "NULL"}
	}
	return clause.Expr{
		SQL:  fmt.Sprintf("ST_SetSRID(ST_GeomFromGeoJSON(?),%d)", SRID),
		Vars: []interface{}{string(data)},
	}
}

// Scan accepts hex-encoded EWKB, which is what PostGIS hands back for a bare
// geometry column.
func (g *GeoJSON) Scan(value interface{}) error {
	if value == nil {
		g.Geometry = nil
		return nil
	}
	s := ewkb.Scanner(&g.Geometry)
	if err := s.Scan(value); err != nil {
		return fmt.Errorf("scan ewkb geometry: %w", err)
	}
	return nil
}

// Decode parses a GeoJSON geometry payload from a raw JSON column or an
// inbound request body.
func Decode(data []byte) (GeoJSON, error) {
	var g GeoJSON
	if len(data) == 0 {
		return g, nil
	}
	if err := g.UnmarshalJSON(data); err != nil {
		return GeoJSON{}, err
	}
	return g, nil
}

// Centroid returns the planar centroid of the geometry, used for the
// centre_point column when the caller does not supply one.
func (g GeoJSON) Centroid() GeoJSON {
	if g.Geometry == nil {
		return GeoJSON{}
	}
	point, _ := planar.CentroidArea(g.Geometry)
	return GeoJSON{Geometry: point}
}

// Raw returns the geometry as a json.RawMessage for DTO embedding.
func (g GeoJSON) Raw() json.RawMessage {
	data, err := g.MarshalJSON()
	if err != nil {
		return json.RawMessage("null")
	}
	return json.RawMessage(data)
}

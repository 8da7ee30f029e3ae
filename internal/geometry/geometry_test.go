package geometry

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func TestGeoJSONRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		payload  string
		wantType string
	}{
		{
			name:     "point",
			payload:  `{"type":"Point","coordinates":[30.31,59.94]}`,
			wantType: "Point",
		},
		{
			name:     "polygon",
			payload:  `{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[1,0],[0,0]]]}`,
			wantType: "Polygon",
		},
		{
			name:     "multipolygon",
			payload:  `{"type":"MultiPolygon","coordinates":[[[[0,0],[0,1],[1,1],[0,0]]]]}`,
			wantType: "MultiPolygon",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var g GeoJSON
			if err := json.Unmarshal([]byte(tc.payload), &g); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if g.Geometry == nil {
				t.Fatalf("geometry is nil after unmarshal")
			}
			if got := g.Geometry.GeoJSONType(); got != tc.wantType {
				t.Fatalf("type: want=%q got=%q", tc.wantType, got)
			}

			out, err := json.Marshal(g)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var again GeoJSON
			if err := json.Unmarshal(out, &again); err != nil {
				t.Fatalf("unmarshal round trip: %v", err)
			}
			if !orb.Equal(g.Geometry, again.Geometry) {
				t.Fatalf("geometry changed across round trip: %v vs %v", g.Geometry, again.Geometry)
			}
		})
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var g GeoJSON
	if err := json.Unmarshal([]byte(`{"type":"Nope","coordinates":[]}`), &g); err == nil {
		t.Fatalf("expected error for unknown geometry type")
	}
}

func TestGormValueUsesGeoJSONWithSRID(t *testing.T) {
	g := FromOrb(orb.Point{30.31, 59.94})
	expr := g.GormValue(nil, nil)

	if !strings.Contains(expr.SQL, "ST_GeomFromGeoJSON") {
		t.Fatalf("expected ST_GeomFromGeoJSON in SQL, got %q", expr.SQL)
	}
	if !strings.Contains(expr.SQL, "4326") {
		t.Fatalf("expected SRID 4326 in SQL, got %q", expr.SQL)
	}
	if len(expr.Vars) != 1 {
		t.Fatalf("expected one bind var, got %d", len(expr.Vars))
	}
}

func TestGormValueNilGeometry(t *testing.T) {
	var g GeoJSON
	expr := g.GormValue(nil, nil)
	if expr.SQL != "NULL" || len(expr.Vars) != 0 {
		t.Fatalf("nil geometry should render as NULL, got %q with %d vars", expr.SQL, len(expr.Vars))
	}
}

func TestCentroidOfPolygon(t *testing.T) {
	poly := orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	c := FromOrb(poly).Centroid()

	point, ok := c.Geometry.(orb.Point)
	if !ok {
		t.Fatalf("centroid is not a point: %T", c.Geometry)
	}
	if point[0] != 1 || point[1] != 1 {
		t.Fatalf("centroid: want=(1,1) got=(%v,%v)", point[0], point[1])
	}
}

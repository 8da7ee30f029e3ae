package types

import "testing"

func ptr(v int64) *int64 { return &v }

func TestSlotFromColumns(t *testing.T) {
	cases := []struct {
		name       string
		scenarioID *int64
		publicID   *int64
		want       Slot
		wantErr    bool
	}{
		{name: "scenario_owned", scenarioID: ptr(7), want: ScenarioOwned(7)},
		{name: "public_owned", publicID: ptr(12), want: PublicOwned(12)},
		{name: "both_set", scenarioID: ptr(7), publicID: ptr(12), wantErr: true},
		{name: "neither_set", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SlotFromColumns(tc.scenarioID, tc.publicID)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestSlotColumnsRoundTrip(t *testing.T) {
	for _, s := range []Slot{ScenarioOwned(3), PublicOwned(9)} {
		scenarioID, publicID := s.Columns()
		back, err := SlotFromColumns(scenarioID, publicID)
		if err != nil {
			t.Fatalf("round trip of %+v: %v", s, err)
		}
		if back != s {
			t.Fatalf("want %+v, got %+v", s, back)
		}
	}
}

func TestOptionalSlotFromColumns(t *testing.T) {
	s, err := OptionalSlotFromColumns(nil, nil)
	if err != nil || s != nil {
		t.Fatalf("empty optional slot: got %+v, %v", s, err)
	}
	s, err = OptionalSlotFromColumns(ptr(4), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil || *s != ScenarioOwned(4) {
		t.Fatalf("want scenario slot 4, got %+v", s)
	}
	if _, err = OptionalSlotFromColumns(ptr(1), ptr(2)); err == nil {
		t.Fatalf("expected error for doubly set optional slot")
	}
}

func TestIsSupersedeMarker(t *testing.T) {
	marker := ScenarioUrbanObject{ScenarioID: 1, PublicUrbanObjectID: ptr(50)}
	if !marker.IsSupersedeMarker() {
		t.Fatalf("row with only a public link must be a supersede marker")
	}
	fork := ScenarioUrbanObject{ScenarioID: 1, PhysicalObjectID: ptr(3), PublicObjectGeometryID: ptr(8)}
	if fork.IsSupersedeMarker() {
		t.Fatalf("row carrying components must not be a supersede marker")
	}
}

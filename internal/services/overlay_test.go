package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/queryfilter"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/types"
)

func ptr[T any](v T) *T { return &v }

func TestMergeUrbanObjectRowsProvenance(t *testing.T) {
	scenarioID := int64(7)
	publicRows := []*repos.UrbanObjectRow{
		{UrbanObjectID: 1, PhysicalObjectID: 10},
		{UrbanObjectID: 2, PhysicalObjectID: 20},
	}
	scenarioRows := []*repos.UrbanObjectRow{
		{UrbanObjectID: 3, PhysicalObjectID: 30},
	}

	views := MergeUrbanObjectRows(publicRows, scenarioRows, &scenarioID)
	if len(views) != 3 {
		t.Fatalf("merged view length = %d, want 3", len(views))
	}
	for i, view := range views[:2] {
		if view.IsScenarioObject {
			t.Fatalf("public row %d marked as scenario object", i)
		}
		if view.ScenarioID != nil {
			t.Fatalf("public row %d carries scenario id %d", i, *view.ScenarioID)
		}
	}
	last := views[2]
	if !last.IsScenarioObject {
		t.Fatalf("scenario row not marked as scenario object")
	}
	if last.ScenarioID == nil || *last.ScenarioID != scenarioID {
		t.Fatalf("scenario row scenario id = %v, want %d", last.ScenarioID, scenarioID)
	}
	if last.IsLocked {
		t.Fatalf("editable scenario row marked as locked")
	}
}

func TestMergeUrbanObjectRowsEmptyBranches(t *testing.T) {
	views := MergeUrbanObjectRows(nil, nil, nil)
	if len(views) != 0 {
		t.Fatalf("merged view length = %d, want 0", len(views))
	}
}

func TestRowToUrbanObjectViewServiceBlock(t *testing.T) {
	plain := &repos.UrbanObjectRow{
		UrbanObjectID:    1,
		PhysicalObjectID: 10,
		ObjectGeometryID: 100,
	}
	view := RowToUrbanObjectView(plain, types.Provenance{}, nil)
	if view.Service != nil {
		t.Fatalf("plain physical object got a service block")
	}

	withService := &repos.UrbanObjectRow{
		UrbanObjectID:    2,
		PhysicalObjectID: 20,
		ObjectGeometryID: 200,
		ServiceID:        ptr(int64(5)),
		ServiceTypeID:    ptr(int64(3)),
		ServiceTypeName:  ptr("school"),
		ServiceName:      ptr("School 12"),
		Capacity:         ptr(640),
	}
	view = RowToUrbanObjectView(withService, types.Provenance{IsScenarioObject: true}, ptr(int64(7)))
	if view.Service == nil {
		t.Fatalf("service row lost its service block")
	}
	if view.Service.ServiceID != 5 {
		t.Fatalf("service id = %d, want 5", view.Service.ServiceID)
	}
	if view.Service.ServiceTypeName != "school" {
		t.Fatalf("service type name = %q, want %q", view.Service.ServiceTypeName, "school")
	}
	if !view.Service.IsScenarioObject {
		t.Fatalf("service block missed scenario provenance")
	}
}

func TestRowToUrbanObjectViewLockedContext(t *testing.T) {
	row := &repos.UrbanObjectRow{UrbanObjectID: 4, PhysicalObjectID: 40}
	view := RowToUrbanObjectView(row, types.Provenance{IsLocked: true}, nil)
	if !view.IsLocked || !view.PhysicalObject.IsLocked || !view.ObjectGeometry.IsLocked {
		t.Fatalf("context provenance not propagated to every block")
	}
	if view.IsScenarioObject {
		t.Fatalf("ring context row marked as scenario object")
	}
}

func TestBufferRowToView(t *testing.T) {
	row := &repos.BufferRow{
		BufferTypeID:   2,
		BufferTypeName: "sanitary",
		UrbanObjectID:  9,
		IsCustom:       true,
	}
	view := bufferRowToView(row, types.Provenance{IsScenarioObject: true})
	if view.BufferTypeID != 2 || view.UrbanObjectID != 9 {
		t.Fatalf("buffer identity lost: %+v", view)
	}
	if !view.IsCustom {
		t.Fatalf("custom flag lost")
	}
	if !view.IsScenarioObject {
		t.Fatalf("buffer provenance lost")
	}
}

type fakeOverlayRepo struct {
	repos.OverlayRepo
	ringRows          []*repos.UrbanObjectRow
	parentRows        []*repos.UrbanObjectRow
	contextScenarioID int64
	contextProjectID  int64
	scenarioRowsCalls int
}

func (f *fakeOverlayRepo) PublicRows(ctx context.Context, tx *gorm.DB, projectID int64, boundary repos.Boundary, excludeIDs []int64, filters ...queryfilter.Filter) ([]*repos.UrbanObjectRow, error) {
	return f.ringRows, nil
}

func (f *fakeOverlayRepo) ScenarioRows(ctx context.Context, tx *gorm.DB, scenarioID int64, filters ...queryfilter.Filter) ([]*repos.UrbanObjectRow, error) {
	f.scenarioRowsCalls++
	return nil, nil
}

func (f *fakeOverlayRepo) ScenarioRowsInContext(ctx context.Context, tx *gorm.DB, scenarioID, projectID int64, filters ...queryfilter.Filter) ([]*repos.UrbanObjectRow, error) {
	f.contextScenarioID = scenarioID
	f.contextProjectID = projectID
	return f.parentRows, nil
}

func TestContextObjectsScopesParentBranch(t *testing.T) {
	parent := int64(4)
	overlay := &fakeOverlayRepo{
		ringRows:   []*repos.UrbanObjectRow{{UrbanObjectID: 1, PhysicalObjectID: 10}},
		parentRows: []*repos.UrbanObjectRow{{UrbanObjectID: 2, PhysicalObjectID: 20}},
	}
	svc := NewOverlayService(nil, testLog(t), overlay,
		&fakeScenarioRepo{scenario: &types.Scenario{ScenarioID: 5, ProjectID: 9, ParentID: &parent}},
		&fakeProjectRepo{project: &types.Project{ProjectID: 9, UserID: "owner"}},
		nil)

	views, err := svc.ContextObjects(ownerContext(), 5)
	if err != nil {
		t.Fatalf("context objects: %v", err)
	}
	if overlay.scenarioRowsCalls != 0 {
		t.Fatalf("parent branch must go through the context window, not the full scenario listing")
	}
	if overlay.contextScenarioID != parent || overlay.contextProjectID != 9 {
		t.Fatalf("context branch called with (%d,%d), want (%d,9)",
			overlay.contextScenarioID, overlay.contextProjectID, parent)
	}
	if len(views) != 2 {
		t.Fatalf("view count = %d, want 2", len(views))
	}
	for i, view := range views {
		if !view.IsLocked {
			t.Fatalf("context row %d must be locked", i)
		}
	}
}

func TestContextObjectsRejectsRegionalScenario(t *testing.T) {
	svc := NewOverlayService(nil, testLog(t), nil,
		&fakeScenarioRepo{scenario: &types.Scenario{ScenarioID: 5, ProjectID: 9}},
		&fakeProjectRepo{project: &types.Project{ProjectID: 9, UserID: "owner", IsRegional: true}},
		nil)

	_, err := svc.ContextObjects(ownerContext(), 5)
	if apierr.Code(err) != apierr.CodeInvariantViolation {
		t.Fatalf("regional context query: want %s, got %v", apierr.CodeInvariantViolation, err)
	}
}

package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/types"
)

func testLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev", "error")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// fakeUrbanObjectRepo keeps scenario link rows in memory and enforces the
// same (scenario_id, public_urban_object_id) uniqueness the database
// index provides.
type fakeUrbanObjectRepo struct {
	repos.UrbanObjectRepo
	public map[int64]*types.UrbanObject
	links  []*types.ScenarioUrbanObject
	nextID int64
}

func (f *fakeUrbanObjectRepo) GetByID(ctx context.Context, tx *gorm.DB, urbanObjectID int64) (*types.UrbanObject, error) {
	object, ok := f.public[urbanObjectID]
	if !ok {
		return nil, apierr.NotFound("urban object", urbanObjectID)
	}
	return object, nil
}

func (f *fakeUrbanObjectRepo) GetShadow(ctx context.Context, tx *gorm.DB, scenarioID, publicUrbanObjectID int64) (*types.ScenarioUrbanObject, error) {
	for _, link := range f.links {
		if link.ScenarioID == scenarioID && link.PublicUrbanObjectID != nil && *link.PublicUrbanObjectID == publicUrbanObjectID {
			return link, nil
		}
	}
	return nil, nil
}

func (f *fakeUrbanObjectRepo) CreateScenario(ctx context.Context, tx *gorm.DB, object *types.ScenarioUrbanObject) (*types.ScenarioUrbanObject, error) {
	if object.PublicUrbanObjectID != nil {
		existing, err := f.GetShadow(ctx, tx, object.ScenarioID, *object.PublicUrbanObjectID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apierr.AlreadyEdited("urban object", object.ScenarioID)
		}
	}
	f.nextID++
	object.UrbanObjectID = f.nextID
	f.links = append(f.links, object)
	return object, nil
}

type fakePhysicalObjectRepo struct {
	repos.PhysicalObjectRepo
	nextID int64
}

func (f *fakePhysicalObjectRepo) Clone(ctx context.Context, tx *gorm.DB, publicPhysicalObjectID int64) (int64, error) {
	f.nextID++
	return f.nextID, nil
}

type fakeObjectGeometryRepo struct {
	repos.ObjectGeometryRepo
	nextID int64
}

func (f *fakeObjectGeometryRepo) Clone(ctx context.Context, tx *gorm.DB, publicObjectGeometryID int64) (int64, error) {
	f.nextID++
	return f.nextID, nil
}

type fakeServiceRepo struct {
	repos.ServiceRepo
	nextID int64
}

func (f *fakeServiceRepo) Clone(ctx context.Context, tx *gorm.DB, publicServiceID int64) (int64, error) {
	f.nextID++
	return f.nextID, nil
}

func newTestMaterializer(t *testing.T, urbanObjects repos.UrbanObjectRepo) Materializer {
	t.Helper()
	return NewMaterializer(nil, testLog(t),
		urbanObjects,
		&fakePhysicalObjectRepo{nextID: 100},
		&fakeObjectGeometryRepo{nextID: 200},
		&fakeServiceRepo{nextID: 300})
}

func TestForkSecondAttemptConflicts(t *testing.T) {
	urbanObjects := &fakeUrbanObjectRepo{
		public: map[int64]*types.UrbanObject{
			50: {UrbanObjectID: 50, PhysicalObjectID: 3, ObjectGeometryID: 8},
		},
	}
	m := newTestMaterializer(t, urbanObjects)

	link, err := m.Fork(context.Background(), nil, 1, 50)
	if err != nil {
		t.Fatalf("first fork: %v", err)
	}
	if link.PhysicalObjectID == nil || link.ObjectGeometryID == nil {
		t.Fatalf("fork must return cloned component ids, got %+v", link)
	}
	if link.ServiceID != nil {
		t.Fatalf("nothing to clone for the service slot, got %v", *link.ServiceID)
	}

	_, err = m.Fork(context.Background(), nil, 1, 50)
	if apierr.Code(err) != apierr.CodeAlreadyEdited {
		t.Fatalf("second fork in same scenario: want %s, got %v", apierr.CodeAlreadyEdited, err)
	}

	// Another scenario is a separate edit space.
	if _, err := m.Fork(context.Background(), nil, 2, 50); err != nil {
		t.Fatalf("fork in another scenario: %v", err)
	}
}

// blindShadowRepo simulates the race where both requests pass the shadow
// pre-check before either marker row lands. The insert itself must still
// report the conflict.
type blindShadowRepo struct {
	*fakeUrbanObjectRepo
}

func (f *blindShadowRepo) GetShadow(ctx context.Context, tx *gorm.DB, scenarioID, publicUrbanObjectID int64) (*types.ScenarioUrbanObject, error) {
	return nil, nil
}

func TestForkRaceCaughtByMarkerInsert(t *testing.T) {
	urbanObjects := &fakeUrbanObjectRepo{
		public: map[int64]*types.UrbanObject{
			50: {UrbanObjectID: 50, PhysicalObjectID: 3, ObjectGeometryID: 8},
		},
	}
	marker := int64(50)
	urbanObjects.links = append(urbanObjects.links, &types.ScenarioUrbanObject{
		UrbanObjectID:       1,
		ScenarioID:          1,
		PublicUrbanObjectID: &marker,
	})

	m := newTestMaterializer(t, &blindShadowRepo{urbanObjects})
	_, err := m.Fork(context.Background(), nil, 1, 50)
	if apierr.Code(err) != apierr.CodeAlreadyEdited {
		t.Fatalf("racing fork: want %s, got %v", apierr.CodeAlreadyEdited, err)
	}
}

func TestSupersedeInsertsMarkerOnly(t *testing.T) {
	urbanObjects := &fakeUrbanObjectRepo{
		public: map[int64]*types.UrbanObject{
			50: {UrbanObjectID: 50, PhysicalObjectID: 3, ObjectGeometryID: 8},
		},
	}
	m := newTestMaterializer(t, urbanObjects)

	if err := m.Supersede(context.Background(), nil, 1, 50); err != nil {
		t.Fatalf("supersede: %v", err)
	}
	if len(urbanObjects.links) != 1 {
		t.Fatalf("want a single marker row, got %d rows", len(urbanObjects.links))
	}
	if !urbanObjects.links[0].IsSupersedeMarker() {
		t.Fatalf("row must be a bare supersede marker, got %+v", urbanObjects.links[0])
	}

	if err := m.Supersede(context.Background(), nil, 1, 50); apierr.Code(err) != apierr.CodeAlreadyEdited {
		t.Fatalf("second supersede: want %s, got %v", apierr.CodeAlreadyEdited, err)
	}
}

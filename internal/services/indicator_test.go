package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/requestdata"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type fakeScenarioRepo struct {
	repos.ScenarioRepo
	scenario *types.Scenario
}

func (f *fakeScenarioRepo) GetByID(ctx context.Context, tx *gorm.DB, scenarioID int64) (*types.Scenario, error) {
	if f.scenario == nil || f.scenario.ScenarioID != scenarioID {
		return nil, apierr.NotFound("scenario", scenarioID)
	}
	return f.scenario, nil
}

type fakeProjectRepo struct {
	repos.ProjectRepo
	project *types.Project
}

func (f *fakeProjectRepo) GetByID(ctx context.Context, tx *gorm.DB, projectID int64) (*types.Project, error) {
	if f.project == nil || f.project.ProjectID != projectID {
		return nil, apierr.NotFound("project", projectID)
	}
	return f.project, nil
}

type fakeIndicatorRepo struct {
	repos.IndicatorRepo
	stored *types.ScenarioIndicatorValue
}

func (f *fakeIndicatorRepo) GetByID(ctx context.Context, tx *gorm.DB, indicatorID int64) (*types.Indicator, error) {
	return &types.Indicator{IndicatorID: indicatorID}, nil
}

func (f *fakeIndicatorRepo) PutValue(ctx context.Context, tx *gorm.DB, value *types.ScenarioIndicatorValue) (*types.ScenarioIndicatorValue, error) {
	f.stored = value
	return value, nil
}

type fakeHextechClient struct {
	err   error
	calls []int64
}

func (f *fakeHextechClient) SaveScenarioIndicators(ctx context.Context, scenarioID int64) error {
	f.calls = append(f.calls, scenarioID)
	return f.err
}

func (f *fakeHextechClient) SaveAllProjectIndicators(ctx context.Context, projectID int64) error {
	return f.err
}

func ownerContext() context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: "owner"})
}

func newTestIndicatorService(t *testing.T, hextechClient *fakeHextechClient) (IndicatorService, *fakeIndicatorRepo) {
	t.Helper()
	indicatorRepo := &fakeIndicatorRepo{}
	svc := NewIndicatorService(nil, testLog(t),
		indicatorRepo,
		&fakeScenarioRepo{scenario: &types.Scenario{ScenarioID: 5, ProjectID: 9}},
		&fakeProjectRepo{project: &types.Project{ProjectID: 9, UserID: "owner"}},
		hextechClient)
	return svc, indicatorRepo
}

func TestUpdateAllValuesSurfacesUpstreamError(t *testing.T) {
	hextechClient := &fakeHextechClient{err: apierr.Upstream("hextech", errors.New("connection refused"))}
	svc, _ := newTestIndicatorService(t, hextechClient)

	err := svc.UpdateAllValues(ownerContext(), 5)
	if apierr.Code(err) != apierr.CodeUpstreamError {
		t.Fatalf("want %s, got %v", apierr.CodeUpstreamError, err)
	}
	if len(hextechClient.calls) != 1 || hextechClient.calls[0] != 5 {
		t.Fatalf("recompute calls = %v, want [5]", hextechClient.calls)
	}

	hextechClient.err = nil
	if err := svc.UpdateAllValues(ownerContext(), 5); err != nil {
		t.Fatalf("recompute success path: %v", err)
	}
}

func TestPutValueFailsWhenRecomputeFails(t *testing.T) {
	hextechClient := &fakeHextechClient{err: apierr.Upstream("hextech", errors.New("status 503"))}
	svc, indicatorRepo := newTestIndicatorService(t, hextechClient)

	_, err := svc.PutValue(ownerContext(), 5, &types.IndicatorValuePut{IndicatorID: 3, Value: 1.5})
	if apierr.Code(err) != apierr.CodeUpstreamError {
		t.Fatalf("want %s, got %v", apierr.CodeUpstreamError, err)
	}
	if indicatorRepo.stored == nil {
		t.Fatalf("value write must happen before the recompute call")
	}
}

func TestUpdateAllValuesRequiresEditAccess(t *testing.T) {
	svc, _ := newTestIndicatorService(t, &fakeHextechClient{})

	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: "stranger"})
	if err := svc.UpdateAllValues(ctx, 5); apierr.Code(err) != apierr.CodeAccessDenied {
		t.Fatalf("want %s, got %v", apierr.CodeAccessDenied, err)
	}
}

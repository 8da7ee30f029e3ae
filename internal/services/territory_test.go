package services

import (
	"context"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/requestdata"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type fakeTerritoryRepo struct {
	repos.TerritoryRepo
	territory   *types.Territory
	hasChildren bool
}

func (f *fakeTerritoryRepo) GetByID(ctx context.Context, tx *gorm.DB, territoryID int64) (*types.Territory, error) {
	if f.territory == nil || f.territory.TerritoryID != territoryID {
		return nil, apierr.NotFound("territory", territoryID)
	}
	return f.territory, nil
}

func (f *fakeTerritoryRepo) HasChildren(ctx context.Context, tx *gorm.DB, territoryID int64) (bool, error) {
	return f.hasChildren, nil
}

func superuserContext() context.Context {
	return requestdata.WithRequestData(context.Background(),
		&requestdata.RequestData{UserID: "admin", IsSuperuser: true})
}

func TestDeleteTerritoryRefusedWhileChildrenExist(t *testing.T) {
	svc := NewTerritoryService(nil, testLog(t),
		&fakeTerritoryRepo{territory: &types.Territory{TerritoryID: 7}, hasChildren: true},
		nil)

	err := svc.Delete(superuserContext(), 7)
	if apierr.Code(err) != apierr.CodeInvariantViolation {
		t.Fatalf("want %s, got %v", apierr.CodeInvariantViolation, err)
	}
	if apierr.Status(err) != http.StatusConflict {
		t.Fatalf("status = %d, want %d", apierr.Status(err), http.StatusConflict)
	}
}

func TestDeleteTerritoryNeedsSuperuser(t *testing.T) {
	svc := NewTerritoryService(nil, testLog(t),
		&fakeTerritoryRepo{territory: &types.Territory{TerritoryID: 7}},
		nil)

	if err := svc.Delete(ownerContext(), 7); apierr.Code(err) != apierr.CodeAccessDenied {
		t.Fatalf("want %s, got %v", apierr.CodeAccessDenied, err)
	}
}

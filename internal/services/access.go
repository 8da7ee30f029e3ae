package services

import (
	"context"
	"fmt"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/requestdata"
	"github.com/urbanatlas/urban-backend/internal/types"
)

// caller pulls the authenticated identity out of the context. Every
// mutating operation requires one.
func caller(ctx context.Context) (*requestdata.RequestData, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == "" {
		return nil, fmt.Errorf("not authenticated")
	}
	return rd, nil
}

// checkProjectRead allows the owner, superusers and anyone on a public
// project.
func checkProjectRead(rd *requestdata.RequestData, project *types.Project) error {
	if rd.IsSuperuser || project.Public || project.UserID == rd.UserID {
		return nil
	}
	return apierr.AccessDenied("project", project.ProjectID)
}

// checkProjectEdit allows the owner and superusers only. Public
// visibility never grants write access.
func checkProjectEdit(rd *requestdata.RequestData, project *types.Project) error {
	if rd.IsSuperuser || project.UserID == rd.UserID {
		return nil
	}
	return apierr.AccessDenied("project", project.ProjectID)
}

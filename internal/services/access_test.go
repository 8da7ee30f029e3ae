package services

import (
	"testing"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/requestdata"
	"github.com/urbanatlas/urban-backend/internal/types"
)

func TestCheckProjectRead(t *testing.T) {
	project := &types.Project{ProjectID: 7, UserID: "owner"}

	cases := []struct {
		name    string
		rd      requestdata.RequestData
		public  bool
		allowed bool
	}{
		{name: "owner", rd: requestdata.RequestData{UserID: "owner"}, allowed: true},
		{name: "stranger private", rd: requestdata.RequestData{UserID: "other"}, allowed: false},
		{name: "stranger public", rd: requestdata.RequestData{UserID: "other"}, public: true, allowed: true},
		{name: "superuser private", rd: requestdata.RequestData{UserID: "other", IsSuperuser: true}, allowed: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			project.Public = tc.public
			err := checkProjectRead(&tc.rd, project)
			if tc.allowed && err != nil {
				t.Fatalf("expected access, got %v", err)
			}
			if !tc.allowed {
				if err == nil {
					t.Fatalf("expected denial")
				}
				if apierr.Status(err) != 403 {
					t.Fatalf("status = %d, want 403", apierr.Status(err))
				}
			}
		})
	}
}

func TestCheckProjectEditIgnoresPublicFlag(t *testing.T) {
	project := &types.Project{ProjectID: 7, UserID: "owner", Public: true}

	if err := checkProjectEdit(&requestdata.RequestData{UserID: "owner"}, project); err != nil {
		t.Fatalf("owner edit: %v", err)
	}
	if err := checkProjectEdit(&requestdata.RequestData{UserID: "other"}, project); err == nil {
		t.Fatalf("public visibility must not grant write access")
	}
	if err := checkProjectEdit(&requestdata.RequestData{UserID: "other", IsSuperuser: true}, project); err != nil {
		t.Fatalf("superuser edit: %v", err)
	}
}

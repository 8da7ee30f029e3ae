package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/urbanatlas/urban-backend/internal/apierr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        apierr.NotFound("scenario", 12),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "already edited",
			err:        apierr.AlreadyEdited("urban object", 7),
			wantStatus: http.StatusConflict,
			wantCode:   "already_edited",
		},
		{
			name:       "access denied",
			err:        apierr.AccessDenied("project", 3),
			wantStatus: http.StatusForbidden,
			wantCode:   "access_denied",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondError(c, tt.err)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var envelope ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("unmarshal envelope: %v", err)
			}
			if envelope.Error.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", envelope.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestQueryInt64List(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []int64
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "7", want: []int64{7}},
		{name: "list", raw: "1,2,3", want: []int64{1, 2, 3}},
		{name: "spaces", raw: "1,+2", want: []int64{1, 2}},
		{name: "garbage", raw: "1,x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/?ids="+tt.raw, nil)
			got, err := queryInt64List(c, "ids")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("want error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusAndCodeResolveThroughWrapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not_found_direct",
			err:        NotFound("scenario", 42),
			wantStatus: http.StatusNotFound,
			wantCode:   CodeNotFound,
		},
		{
			name:       "already_edited_wrapped",
			err:        fmt.Errorf("update physical object: %w", AlreadyEdited("physical object", 7)),
			wantStatus: http.StatusConflict,
			wantCode:   CodeAlreadyEdited,
		},
		{
			name:       "access_denied_double_wrapped",
			err:        fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", AccessDenied("project", 3))),
			wantStatus: http.StatusForbidden,
			wantCode:   CodeAccessDenied,
		},
		{
			name:       "upstream",
			err:        Upstream("hextech", errors.New("connection refused")),
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeUpstreamError,
		},
		{
			name:       "plain_error_is_internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Status(tc.err); got != tc.wantStatus {
				t.Fatalf("Status: want=%d got=%d", tc.wantStatus, got)
			}
			if got := Code(tc.err); got != tc.wantCode {
				t.Fatalf("Code: want=%q got=%q", tc.wantCode, got)
			}
		})
	}
}

func TestAlreadyEditedIsDistinctFromAlreadyExists(t *testing.T) {
	edited := AlreadyEdited("service", 1)
	exists := AlreadyExists("indicator value", "(1, 2)")

	if edited.Status != exists.Status {
		t.Fatalf("both conflict kinds should map to the same HTTP status, got %d vs %d", edited.Status, exists.Status)
	}
	if edited.Code == exists.Code {
		t.Fatalf("already_edited and already_exists must stay distinguishable, both are %q", edited.Code)
	}
	if !Is(edited, CodeAlreadyEdited) || Is(edited, CodeAlreadyExists) {
		t.Fatalf("Is() misclassified already_edited error")
	}
}

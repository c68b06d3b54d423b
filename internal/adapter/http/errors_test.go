package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

func TestToHumaError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &domain.ValidationError{Field: "email", Reason: "is malformed"}, http.StatusUnprocessableEntity},
		{"transition", &domain.TransitionError{Event: domain.EventRegistrationCompleted, Current: domain.AdminStatusCreated}, http.StatusUnprocessableEntity},
		{"slug conflict", &domain.SlugConflictError{Slug: "acme"}, http.StatusConflict},
		{"deletion in progress", domain.ErrDeletionInProgress, http.StatusConflict},
		{"not found", fmt.Errorf("loading: %w", domain.ErrTenantNotFound), http.StatusNotFound},
		{"fatal", &domain.FatalInconsistencyError{TenantID: "t", Err: errors.New("boom")}, http.StatusInternalServerError},
		{"transport", &domain.TransportError{Op: "relay", Err: errors.New("timeout")}, http.StatusServiceUnavailable},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var se huma.StatusError
			if !errors.As(toHumaError(tc.err), &se) {
				t.Fatal("expected a huma.StatusError")
			}
			if se.GetStatus() != tc.want {
				t.Errorf("status = %d, want %d", se.GetStatus(), tc.want)
			}
		})
	}
}

func TestToHumaError_FatalHasDistinctMessage(t *testing.T) {
	fatal := toHumaError(&domain.FatalInconsistencyError{TenantID: "t", Err: errors.New("boom")})
	internal := toHumaError(errors.New("boom"))

	if fatal.Error() == internal.Error() {
		t.Errorf("fatal and internal errors should be distinguishable, both %q", fatal.Error())
	}
}

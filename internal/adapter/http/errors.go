package http

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

// toHumaError translates domain errors to Huma HTTP errors by kind.
func toHumaError(err error) error {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return huma.Error422UnprocessableEntity(vErr.Error(), &huma.ErrorDetail{
				Location: vErr.Field,
				Message:  vErr.Reason,
			})
		}
		return huma.Error422UnprocessableEntity(err.Error())
	case domain.KindConflict:
		return huma.Error409Conflict(err.Error())
	case domain.KindNotFound:
		return huma.Error404NotFound(err.Error())
	case domain.KindFatalInconsistency:
		return huma.Error500InternalServerError("tenant may be partially deleted, manual reconciliation required")
	case domain.KindTransport:
		return huma.Error503ServiceUnavailable("upstream unavailable, retry later")
	}
	return huma.Error500InternalServerError("internal server error")
}

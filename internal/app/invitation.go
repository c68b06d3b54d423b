package app

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

// InvitationResult describes a delivered invitation. Warning is set when the
// email went out but the last-invited timestamp could not be recorded.
type InvitationResult struct {
	Email          string
	TenantID       string
	ActivationLink string
	SentAt         time.Time
	Warning        string
}

// InvitationDispatcher sends activation emails to administrators.
type InvitationDispatcher struct {
	gateway           domain.NotificationGateway
	admins            domain.AdminStore
	activationBaseURL string
	metrics           Metrics
	logger            *zap.Logger
}

// NewInvitationDispatcher creates a dispatcher. Activation links are built on activationBaseURL.
func NewInvitationDispatcher(
	gateway domain.NotificationGateway,
	admins domain.AdminStore,
	activationBaseURL string,
	logger *zap.Logger,
	opts ...Option,
) *InvitationDispatcher {
	o := buildOptions(opts)
	return &InvitationDispatcher{
		gateway:           gateway,
		admins:            admins,
		activationBaseURL: activationBaseURL,
		metrics:           o.metrics,
		logger:            logger.Named("invitations"),
	}
}

// Send delivers an invitation and then records it. Resending is allowed,
// including to administrators that are already active, and never changes
// their status. A delivery failure is returned; a bookkeeping failure is only
// logged and reported in the result.
func (d *InvitationDispatcher) Send(ctx context.Context, email, tenantID, tenantName string) (InvitationResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := domain.ValidateEmail("email", email); err != nil {
		return InvitationResult{}, err
	}
	if err := domain.ValidateID("tenant_id", tenantID); err != nil {
		return InvitationResult{}, err
	}

	inv := domain.Invitation{
		Email:          email,
		TenantID:       tenantID,
		TenantName:     tenantName,
		ActivationLink: d.activationLink(email, tenantID),
	}

	if err := d.gateway.SendInvitation(ctx, inv); err != nil {
		d.metrics.InvitationSent(false)
		if domain.KindOf(err) == domain.KindInternal {
			err = &domain.TransportError{Op: "sending invitation", Err: err}
		}
		return InvitationResult{}, err
	}
	d.metrics.InvitationSent(true)

	result := InvitationResult{
		Email:          email,
		TenantID:       tenantID,
		ActivationLink: inv.ActivationLink,
		SentAt:         time.Now().UTC(),
	}

	if err := d.admins.MarkInvited(ctx, tenantID, email, result.SentAt); err != nil {
		d.metrics.InvitationBookkeepingFailed()
		d.logger.Warn("recording invitation failed",
			zap.String("tenant_id", tenantID),
			zap.String("email", email),
			zap.Error(err),
		)
		result.Warning = "invitation sent, last invited time not recorded"
	}

	return result, nil
}

func (d *InvitationDispatcher) activationLink(email, tenantID string) string {
	q := url.Values{}
	q.Set("tenant", tenantID)
	q.Set("email", email)
	if strings.Contains(d.activationBaseURL, "?") {
		return d.activationBaseURL + "&" + q.Encode()
	}
	return d.activationBaseURL + "?" + q.Encode()
}

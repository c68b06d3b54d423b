package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

var _ domain.NotificationGateway = (*LogGateway)(nil)

// LogGateway writes rendered invitations to the log instead of sending them.
// It is meant for local development.
type LogGateway struct {
	sender string
	logger *zap.Logger
}

// NewLogGateway creates a gateway that logs at info level.
func NewLogGateway(sender string, logger *zap.Logger) *LogGateway {
	return &LogGateway{sender: sender, logger: logger.Named("mail")}
}

func (g *LogGateway) SendInvitation(_ context.Context, inv domain.Invitation) error {
	msg, err := render(g.sender, inv)
	if err != nil {
		return err
	}
	g.logger.Info("invitation email",
		zap.String("tenant_id", inv.TenantID),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("activation_link", inv.ActivationLink),
	)
	return nil
}

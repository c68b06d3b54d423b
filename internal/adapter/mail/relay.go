package mail

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

var _ domain.NotificationGateway = (*RelayGateway)(nil)

// RelayConfig configures a RelayGateway.
type RelayConfig struct {
	URL           string
	Token         string
	Sender        string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

// RelayGateway posts rendered invitations to an HTTP mail relay.
// Requests are never retried because the relay may already have accepted the message.
type RelayGateway struct {
	client  *resty.Client
	url     string
	limiter *rate.Limiter
	sender  string
	logger  *zap.Logger
}

// NewRelayGateway creates a gateway for the relay at cfg.URL.
func NewRelayGateway(cfg RelayConfig, logger *zap.Logger) *RelayGateway {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &RelayGateway{
		client:  client,
		url:     cfg.URL,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst),
		sender:  cfg.Sender,
		logger:  logger.Named("relay"),
	}
}

// SendInvitation renders the invitation and submits it to the relay.
func (g *RelayGateway) SendInvitation(ctx context.Context, inv domain.Invitation) error {
	msg, err := render(g.sender, inv)
	if err != nil {
		return err
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return &domain.TransportError{Op: "waiting for relay rate limit", Err: err}
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post(g.url)
	if err != nil {
		return &domain.TransportError{Op: "posting to mail relay", Err: err}
	}

	switch code := resp.StatusCode(); {
	case code >= 200 && code < 300:
		g.logger.Debug("invitation accepted by relay",
			zap.String("tenant_id", inv.TenantID),
			zap.String("email", inv.Email),
		)
		return nil
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return &domain.ConflictError{Reason: fmt.Sprintf("mail relay rejected the invitation (status %d)", code)}
	default:
		return &domain.TransportError{
			Op:  "posting to mail relay",
			Err: fmt.Errorf("unexpected status %d: %s", code, resp.String()),
		}
	}
}

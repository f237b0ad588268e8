package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rvalenzuelab/voznote/internal/config"
	"github.com/rvalenzuelab/voznote/internal/domain/settings"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
	"github.com/rvalenzuelab/voznote/internal/pkg/logger"
	"github.com/rvalenzuelab/voznote/internal/pkg/metrics"
	"github.com/rvalenzuelab/voznote/internal/providers"
)

// Plan prices in CLP
const (
	priceMonthly int64 = 4990
	priceYearly  int64 = 49900
)

// Webhook outcomes, reported in logs and metrics
const (
	WebhookUpgraded  = "upgraded"
	WebhookIgnored   = "ignored"
	WebhookMalformed = "malformed"
	WebhookError     = "error"
)

// orderSegments is the shape of a commerce order id:
// <prefix>-<planTag>-<userID>-<epochMillis>
const orderSegments = 4

// Gateway is the payment provider surface the service depends on
type Gateway interface {
	CreateOrder(ctx context.Context, p providers.OrderParams) (*providers.Order, error)
	GetStatus(ctx context.Context, token string) (*providers.PaymentStatus, error)
}

// PaymentService creates checkout orders and confirms webhook notifications
type PaymentService struct {
	gateway Gateway
	store   settings.Store
	cfg     config.PaymentConfig
	logger  *logger.Logger
	now     func() time.Time
}

// NewPaymentService creates a payment service. gateway may be nil when the
// integration is not configured.
func NewPaymentService(gateway Gateway, store settings.Store, cfg config.PaymentConfig, log *logger.Logger) *PaymentService {
	return &PaymentService{
		gateway: gateway,
		store:   store,
		cfg:     cfg,
		logger:  log,
		now:     time.Now,
	}
}

// Configured reports whether the gateway integration is usable
func (s *PaymentService) Configured() bool {
	return s.gateway != nil
}

// CreateOrder registers a checkout order for the given plan and returns the
// redirect URL for the payer.
func (s *PaymentService) CreateOrder(ctx context.Context, userID, email, planTag string) (string, string, error) {
	if s.gateway == nil {
		return "", "", errors.NotConfigured("payments")
	}

	var amount int64
	var subject string
	switch planTag {
	case settings.PlanTagMonthly:
		amount, subject = priceMonthly, "VozNote Pro (monthly)"
	case settings.PlanTagYearly:
		amount, subject = priceYearly, "VozNote Pro (yearly)"
	default:
		return "", "", errors.BadRequest(fmt.Sprintf("Unknown plan %q", planTag))
	}

	commerceOrder := fmt.Sprintf("%s-%s-%s-%d",
		s.cfg.OrderPrefix, planTag, userID, s.now().UnixMilli())

	order, err := s.gateway.CreateOrder(ctx, providers.OrderParams{
		CommerceOrder: commerceOrder,
		Subject:       subject,
		Amount:        amount,
		Currency:      "CLP",
		Email:         email,
		ConfirmURL:    s.cfg.ConfirmURL,
		ReturnURL:     s.cfg.ReturnURL,
	})
	if err != nil {
		return "", "", errors.PaymentAPIError(err)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":        userID,
		"commerce_order": commerceOrder,
		"plan":           planTag,
	}).Info("Payment order created")

	return order.RedirectURL(), commerceOrder, nil
}

// HandleWebhook processes a payment confirmation token. The token is never
// trusted on its own: the authoritative status comes from the gateway.
//
// Gateway failures return an error so the caller answers 500 and the provider
// retries. A paid status with a malformed order id is logged and acknowledged
// without applying anything, since retrying cannot fix the id.
func (s *PaymentService) HandleWebhook(ctx context.Context, token string) (string, error) {
	if s.gateway == nil {
		return WebhookError, errors.NotConfigured("payments")
	}

	status, err := s.gateway.GetStatus(ctx, token)
	if err != nil {
		metrics.RecordWebhook(WebhookError)
		return WebhookError, errors.PaymentAPIError(err)
	}

	if !status.Paid() {
		s.logger.WithFields(map[string]interface{}{
			"commerce_order": status.CommerceOrder,
			"status":         status.Status,
		}).Info("Webhook for unpaid order, ignoring")
		metrics.RecordWebhook(WebhookIgnored)
		return WebhookIgnored, nil
	}

	userID, endsAt, perr := s.parseOrder(status.CommerceOrder)
	if perr != nil {
		s.logger.WithFields(map[string]interface{}{
			"commerce_order": status.CommerceOrder,
			"reason":         perr.Error(),
		}).Warn("Paid webhook with malformed order id, acknowledging without upgrade")
		metrics.RecordWebhook(WebhookMalformed)
		return WebhookMalformed, nil
	}

	if _, err := s.store.ApplyUpgrade(ctx, userID, endsAt); err != nil {
		metrics.RecordWebhook(WebhookError)
		return WebhookError, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":        userID,
		"commerce_order": status.CommerceOrder,
		"ends_at":        endsAt,
	}).Info("Subscription upgraded from payment webhook")
	metrics.RecordWebhook(WebhookUpgraded)
	return WebhookUpgraded, nil
}

// parseOrder extracts the user and subscription end from a commerce order id.
// The id must have exactly four segments and a known plan tag.
func (s *PaymentService) parseOrder(commerceOrder string) (string, time.Time, error) {
	parts := strings.Split(commerceOrder, "-")
	if len(parts) != orderSegments {
		return "", time.Time{}, fmt.Errorf("expected %d segments, got %d", orderSegments, len(parts))
	}
	if parts[0] != s.cfg.OrderPrefix {
		return "", time.Time{}, fmt.Errorf("unknown order prefix %q", parts[0])
	}

	userID := parts[2]
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("empty user id")
	}

	now := s.now()
	var endsAt time.Time
	switch parts[1] {
	case settings.PlanTagMonthly:
		endsAt = now.AddDate(0, 1, 0)
	case settings.PlanTagYearly:
		endsAt = now.AddDate(1, 0, 0)
	default:
		return "", time.Time{}, fmt.Errorf("unknown plan tag %q", parts[1])
	}

	return userID, endsAt, nil
}

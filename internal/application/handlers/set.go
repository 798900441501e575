package handlers

import (
	"log/slog"

	"github.com/clearbill/payments/internal/application"
)

// Set bundles one instance of every operation handler, wired against
// the same repositories, unit of work and gateway registry.
type Set struct {
	Authorize           *AuthorizeHandler
	Capture             *CapturePaymentHandler
	AuthorizeAndCapture *AuthorizeAndCaptureHandler
	ProcessSuspended    *AuthorizeAndCaptureSuspendedHandler
	Cancel              *CancelPaymentHandler
	Refund              *RefundPaymentHandler
	Terminate           *TerminatePaymentHandler
	CreateScheduled     *CreateScheduledPaymentHandler
	CancelScheduled     *CancelScheduledPaymentHandler
	PaymentMethods      *PaymentMethodHandler
}

func NewSet(
	repos *application.Repositories,
	uow application.UnitOfWork,
	gateways application.GatewayRegistry,
	creds application.CredentialsProvider,
	subscriptions application.SubscriptionService,
	events application.EventPublisher,
	logger *slog.Logger,
) *Set {
	return &Set{
		Authorize:           NewAuthorizeHandler(repos, uow, gateways, creds, events, logger),
		Capture:             NewCapturePaymentHandler(repos, uow, gateways, creds, logger),
		AuthorizeAndCapture: NewAuthorizeAndCaptureHandler(repos, uow, gateways, creds, events, logger),
		ProcessSuspended:    NewAuthorizeAndCaptureSuspendedHandler(repos, uow, gateways, creds, events, logger),
		Cancel:              NewCancelPaymentHandler(repos, uow, gateways, creds, logger),
		Refund:              NewRefundPaymentHandler(repos, uow, gateways, creds, events, logger),
		Terminate:           NewTerminatePaymentHandler(repos, uow, events, logger),
		CreateScheduled:     NewCreateScheduledPaymentHandler(repos, uow, subscriptions, events, logger),
		CancelScheduled:     NewCancelScheduledPaymentHandler(repos, uow, logger),
		PaymentMethods:      NewPaymentMethodHandler(repos, uow, logger),
	}
}

package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
	"github.com/google/uuid"
)

// refundStrategy issues the actual credit for a refund payment.
type refundStrategy interface {
	Execute(ctx context.Context, original, refund *domain.Payment) (*application.GatewayResult, error)
}

// electronicRefund pushes funds back through the gateway credit
// operation.
type electronicRefund struct {
	gateways    application.GatewayRegistry
	credentials application.CredentialsProvider
	methods     application.PaymentMethodRepository
}

func (s *electronicRefund) Execute(ctx context.Context, original, refund *domain.Payment) (*application.GatewayResult, error) {
	adapter, ok := s.gateways.Adapter(original.Gateway)
	if !ok {
		return nil, application.NewUnsupportedValueError("gateway", string(original.Gateway))
	}
	creds, err := s.credentials.Get(ctx, original.Gateway)
	if err != nil {
		return nil, err
	}

	var token string
	if original.PaymentMethodID != nil {
		method, err := s.methods.FindByID(ctx, *original.PaymentMethodID)
		if err != nil && !errors.Is(err, application.ErrPaymentMethodNotFound) {
			return nil, err
		}
		if method != nil {
			token = method.Token
		}
	}

	return adapter.Credit(ctx, application.CreditRequest{
		PaymentID: refund.ID,
		Amount:    refund.Amount,
		Currency:  refund.Currency,
		Token:     token,
	}, creds)
}

// manualRefund records a check or cash refund without any gateway call;
// it always succeeds.
type manualRefund struct{}

func (s *manualRefund) Execute(ctx context.Context, original, refund *domain.Payment) (*application.GatewayResult, error) {
	return &application.GatewayResult{
		Success:              true,
		GatewayTransactionID: "manual-" + uuid.New().String(),
	}, nil
}

// RefundPaymentHandler issues funds back to a payment method, creating a
// new payment in the refund lineage of the original.
type RefundPaymentHandler struct {
	repos       *application.Repositories
	uow         application.UnitOfWork
	gateways    application.GatewayRegistry
	credentials application.CredentialsProvider
	events      application.EventPublisher
	logger      *slog.Logger
	sm          domain.StateMachine
}

func NewRefundPaymentHandler(
	repos *application.Repositories,
	uow application.UnitOfWork,
	gateways application.GatewayRegistry,
	credentials application.CredentialsProvider,
	events application.EventPublisher,
	logger *slog.Logger,
) *RefundPaymentHandler {
	return &RefundPaymentHandler{
		repos:       repos,
		uow:         uow,
		gateways:    gateways,
		credentials: credentials,
		events:      events,
		logger:      logger,
	}
}

// Handle refunds up to the original payment's captured amount. The
// check runs inside the unit of work with the original row locked, so
// concurrent refunds against the same payment cannot both pass and the
// lifetime total never exceeds what was captured. Declined refunds do
// not count against the total. Electronic refunds settle CREDITED or
// DECLINED from the gateway's answer; manual refunds always record
// CREDITED.
func (h *RefundPaymentHandler) Handle(ctx context.Context, cmd RefundCommand) (*domain.Payment, error) {
	original, err := h.repos.Payments.FindByID(ctx, cmd.PaymentID)
	if err != nil {
		if errors.Is(err, application.ErrPaymentNotFound) {
			return nil, application.NewNotFoundError("payment", cmd.PaymentID)
		}
		return nil, err
	}

	strategy, gateway, paymentType := h.selectStrategy(cmd, original)

	var (
		refund *domain.Payment
		result *application.GatewayResult
	)
	err = h.uow.WithinTx(ctx, func(ctx context.Context, r *application.Repositories) error {
		original, err = r.Payments.FindByIDForUpdate(ctx, cmd.PaymentID)
		if err != nil {
			return err
		}

		refundedSoFar, err := h.refundedSoFar(ctx, r, original.ID)
		if err != nil {
			return err
		}
		if smErr := h.sm.CanRefund(original, cmd.Amount, refundedSoFar); smErr != nil {
			return application.NewValidationError(smErr)
		}

		refund, err = domain.NewRefundPayment(uuid.New().String(), original, cmd.Amount, gateway, paymentType)
		if err != nil {
			return application.NewValidationError(err)
		}
		refund.Notes = cmd.Notes

		if err := r.Payments.Create(ctx, refund); err != nil {
			return err
		}

		result, err = strategy.Execute(ctx, original, refund)
		if err != nil {
			return translateGatewayErr(err)
		}

		if result.Success {
			if err := refund.Credit(); err != nil {
				return err
			}
		} else {
			if err := refund.Decline(result.Message); err != nil {
				return err
			}
		}

		if err := r.Payments.Update(ctx, refund); err != nil {
			return err
		}
		entry := domain.NewTransaction(uuid.New().String(), refund.ID, domain.TransactionCredit, result.GatewayTransactionID, result.ResponseCode)
		return r.Ledger.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	if !result.Success {
		h.logger.Warn("refund declined",
			"payment_id", refund.ID,
			"original_payment_id", original.ID,
			"message", result.Message)
		h.events.Publish(ctx, domain.NewRefundPaymentFailedEvent(refund, result.Message))
		return refund, nil
	}

	h.logger.Info("refund credited",
		"payment_id", refund.ID, "original_payment_id", original.ID)
	return refund, nil
}

// refundedSoFar sums the original's refund lineage. In-flight refunds
// count too; only declined ones release their amount back.
func (h *RefundPaymentHandler) refundedSoFar(ctx context.Context, r *application.Repositories, originalID string) (int64, error) {
	refunds, err := r.Payments.FindRefundsByOriginal(ctx, originalID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, ref := range refunds {
		if ref.Status != domain.StatusDeclined {
			total += ref.Amount
		}
	}
	return total, nil
}

// selectStrategy picks manual for explicit check/cash refunds and for
// gateways that cannot push credits; electronic otherwise.
func (h *RefundPaymentHandler) selectStrategy(cmd RefundCommand, original *domain.Payment) (refundStrategy, domain.GatewayID, domain.PaymentType) {
	caps, _ := domain.CapabilitiesFor(original.Gateway)
	if cmd.Manual || !caps.SupportsCredit {
		return &manualRefund{}, domain.GatewayCheck, domain.TypeCheck
	}
	return &electronicRefund{
		gateways:    h.gateways,
		credentials: h.credentials,
		methods:     h.repos.Methods,
	}, original.Gateway, original.Type
}

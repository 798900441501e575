package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/clearbill/payments/internal/domain"
)

func toPaymentModel(p *domain.Payment) paymentModel {
	return paymentModel{
		ID:                p.ID,
		AccountID:         p.AccountID,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            string(p.Status),
		Gateway:           string(p.Gateway),
		Type:              string(p.Type),
		PaymentMethodID:   p.PaymentMethodID,
		OriginalPaymentID: p.OriginalPaymentID,
		ProcessedAt:       p.ProcessedAt,
		TerminatedAt:      p.TerminatedAt,
		TerminatedBy:      p.TerminatedBy,
		Notes:             p.Notes,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toDomainPayment(m paymentModel) *domain.Payment {
	return &domain.Payment{
		ID:                m.ID,
		AccountID:         m.AccountID,
		Amount:            m.Amount,
		Currency:          m.Currency,
		Status:            domain.PaymentStatus(m.Status),
		Gateway:           domain.GatewayID(m.Gateway),
		Type:              domain.PaymentType(m.Type),
		PaymentMethodID:   m.PaymentMethodID,
		OriginalPaymentID: m.OriginalPaymentID,
		ProcessedAt:       m.ProcessedAt,
		TerminatedAt:      m.TerminatedAt,
		TerminatedBy:      m.TerminatedBy,
		Notes:             m.Notes,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toPaymentMethodModel(m *domain.PaymentMethod) paymentMethodModel {
	return paymentMethodModel{
		ID:              m.ID,
		AccountID:       m.AccountID,
		Type:            string(m.Type),
		Gateway:         string(m.Gateway),
		Token:           m.Token,
		HolderName:      m.HolderName,
		LastFour:        m.LastFour,
		ExpirationMonth: m.ExpirationMonth,
		ExpirationYear:  m.ExpirationYear,
		RoutingLastFour: m.RoutingLastFour,
		AccountLastFour: m.AccountLastFour,
		IsPrimary:       m.IsPrimary,
		DeletedAt:       m.DeletedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toDomainPaymentMethod(m paymentMethodModel) *domain.PaymentMethod {
	return &domain.PaymentMethod{
		ID:              m.ID,
		AccountID:       m.AccountID,
		Type:            domain.PaymentType(m.Type),
		Gateway:         domain.GatewayID(m.Gateway),
		Token:           m.Token,
		HolderName:      m.HolderName,
		LastFour:        m.LastFour,
		ExpirationMonth: m.ExpirationMonth,
		ExpirationYear:  m.ExpirationYear,
		RoutingLastFour: m.RoutingLastFour,
		AccountLastFour: m.AccountLastFour,
		IsPrimary:       m.IsPrimary,
		DeletedAt:       m.DeletedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toDomainTransaction(m transactionModel) *domain.Transaction {
	return &domain.Transaction{
		ID:                   m.ID,
		PaymentID:            m.PaymentID,
		Type:                 domain.TransactionType(m.Type),
		GatewayTransactionID: m.GatewayTransactionID,
		GatewayResponseCode:  m.GatewayResponseCode,
		CreatedAt:            m.CreatedAt,
	}
}

func toScheduledPaymentModel(s *domain.ScheduledPayment) (scheduledPaymentModel, error) {
	metadata, err := json.Marshal(s.Metadata)
	if err != nil {
		return scheduledPaymentModel{}, fmt.Errorf("marshalling scheduled payment metadata: %w", err)
	}
	return scheduledPaymentModel{
		ID:              s.ID,
		AccountID:       s.AccountID,
		Amount:          s.Amount,
		PaymentMethodID: s.PaymentMethodID,
		Trigger:         string(s.Trigger),
		Metadata:        metadata,
		Status:          string(s.Status),
		PaymentID:       s.PaymentID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}, nil
}

func toDomainScheduledPayment(m scheduledPaymentModel) (*domain.ScheduledPayment, error) {
	var metadata map[string]string
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling scheduled payment metadata: %w", err)
		}
	}
	return &domain.ScheduledPayment{
		ID:              m.ID,
		AccountID:       m.AccountID,
		Amount:          m.Amount,
		PaymentMethodID: m.PaymentMethodID,
		Trigger:         domain.ScheduledTrigger(m.Trigger),
		Metadata:        metadata,
		Status:          domain.ScheduledStatus(m.Status),
		PaymentID:       m.PaymentID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

func toDomainAccount(m accountModel) *domain.Account {
	return &domain.Account{
		ID:              m.ID,
		AreaID:          m.AreaID,
		Name:            m.Name,
		AutopayMethodID: m.AutopayMethodID,
	}
}

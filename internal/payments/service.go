package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orderdesk/orderdesk-backend/internal/ledger"
	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	apperrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/metrics"
	"github.com/orderdesk/orderdesk-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service runs the payment verification workflow: the customer reports an
// external payment, an operator confirms or rejects it. Confirmation is the
// only place money actually moves.
type Service interface {
	Report(ctx context.Context, orderID, customerID int64, method string) (*models.Order, error)
	Confirm(ctx context.Context, orderID, operatorID int64) (*models.Order, error)
	RejectPayment(ctx context.Context, orderID, operatorID int64, reason string) error
}

// PaymentEvent is the payload shared by the report/confirm/reject events.
type PaymentEvent struct {
	OrderID    int64               `json:"order_id"`
	CustomerID int64               `json:"customer_id"`
	Method     enums.PaymentMethod `json:"method,omitempty"`
	PaidAmount int64               `json:"paid_amount,omitempty"`
	Wallet     int64               `json:"wallet_amount,omitempty"`
	Status     enums.OrderStatus   `json:"status"`
	Reason     string              `json:"reason,omitempty"`
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	ledger   ledger.Service
	bonusCfg config.BonusConfig
	metrics  *metrics.LifecycleMetrics
	now      func() time.Time
}

// NewService builds the payment workflow service.
func NewService(
	repo Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	ledgerSvc ledger.Service,
	bonusCfg config.BonusConfig,
	lifecycle *metrics.LifecycleMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   outboxSvc,
		ledger:   ledgerSvc,
		bonusCfg: bonusCfg,
		metrics:  lifecycle,
		now:      time.Now,
	}, nil
}

// Report moves the order into verification_pending. Reporting again while
// verification is pending is a no-op success so double-tapped chat buttons
// do not surface errors.
func (s *service) Report(ctx context.Context, orderID, customerID int64, method string) (*models.Order, error) {
	if customerID == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "customer id is required")
	}
	parsed, err := enums.ParsePaymentMethod(method)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid payment method")
	}

	var reported *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return translateOrderErr(err)
		}
		if order.CustomerID != customerID {
			return apperrors.New(apperrors.CodeForbidden, "order belongs to another customer")
		}
		if order.Status == enums.OrderStatusVerificationPending {
			reported = order
			return nil
		}
		if order.Status != enums.OrderStatusWaitingPayment {
			return apperrors.New(apperrors.CodeStateConflict, "order is not awaiting payment")
		}

		affected, err := repo.UpdateStatusGuarded(ctx, order.ID,
			enums.OrderStatusWaitingPayment, enums.OrderStatusVerificationPending,
			map[string]any{"payment_method": parsed})
		if err != nil {
			return apperrors.Wrap(apperrors.CodePersistence, err, "report payment")
		}
		if affected == 0 {
			return apperrors.New(apperrors.CodeStateConflict, "order already handled")
		}

		order.Status = enums.OrderStatusVerificationPending
		order.PaymentMethod = &parsed
		reported = order

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentReported,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         outbox.CustomerActor(customerID),
			Data: PaymentEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				Method:     parsed,
				Status:     order.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncPaymentReported()
	}
	return reported, nil
}

// Confirm settles the order in one transaction: the wallet reservation is
// debited first, then the status flips with a guarded update. If the debit
// fails nothing is marked paid; if the guarded update loses a race the debit
// rolls back with it.
func (s *service) Confirm(ctx context.Context, orderID, operatorID int64) (*models.Order, error) {
	if operatorID == 0 {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "operator identity missing")
	}

	var confirmed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return translateOrderErr(err)
		}
		if order.Status != enums.OrderStatusVerificationPending {
			return apperrors.New(apperrors.CodeStateConflict, "order is not awaiting verification")
		}

		if order.WalletAmount > 0 {
			oid := order.ID
			if _, err := s.ledger.DebitInTx(ctx, tx, ledger.EntryInput{
				CustomerID:  order.CustomerID,
				Amount:      order.WalletAmount,
				Reason:      enums.ReasonOrderDiscount,
				Description: fmt.Sprintf("balance applied to order #%d", order.ID),
				OrderID:     &oid,
			}); err != nil {
				return err
			}
		}

		finalPrice := order.FinalPrice()
		target := enums.OrderStatusPaid
		if finalPrice == 0 && order.WalletAmount > 0 {
			target = enums.OrderStatusPaidFull
		}

		now := s.now()
		affected, err := repo.UpdateStatusGuarded(ctx, order.ID,
			enums.OrderStatusVerificationPending, target,
			map[string]any{"paid_amount": finalPrice, "paid_at": now})
		if err != nil {
			return apperrors.Wrap(apperrors.CodePersistence, err, "confirm payment")
		}
		if affected == 0 {
			return apperrors.New(apperrors.CodeStateConflict, "order already handled")
		}

		order.Status = target
		order.PaidAmount = finalPrice
		order.PaidAt = &now
		confirmed = order

		if _, err := repo.IncrementCompletedOrders(ctx, order.CustomerID); err != nil {
			return apperrors.Wrap(apperrors.CodePersistence, err, "increment completed orders")
		}
		if err := s.creditBonuses(ctx, tx, repo, order); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentConfirmed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         outbox.OperatorActor(operatorID),
			Data: PaymentEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				PaidAmount: finalPrice,
				Wallet:     order.WalletAmount,
				Status:     target,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncPaymentConfirmed()
	}
	return confirmed, nil
}

// RejectPayment sends the order back to waiting_payment. Nothing was ever
// debited, so there is no ledger action.
func (s *service) RejectPayment(ctx context.Context, orderID, operatorID int64, reason string) error {
	if operatorID == 0 {
		return apperrors.New(apperrors.CodeUnauthorized, "operator identity missing")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return translateOrderErr(err)
		}
		if order.Status != enums.OrderStatusVerificationPending {
			return apperrors.New(apperrors.CodeStateConflict, "order is not awaiting verification")
		}

		affected, err := repo.UpdateStatusGuarded(ctx, order.ID,
			enums.OrderStatusVerificationPending, enums.OrderStatusWaitingPayment, nil)
		if err != nil {
			return apperrors.Wrap(apperrors.CodePersistence, err, "reject payment")
		}
		if affected == 0 {
			return apperrors.New(apperrors.CodeStateConflict, "order already handled")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentRejected,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         outbox.OperatorActor(operatorID),
			Data: PaymentEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				Status:     enums.OrderStatusWaitingPayment,
				Reason:     reason,
			},
		})
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncPaymentRejected()
	}
	return nil
}

// creditBonuses grants the order-creation bonus on every confirmed order and
// the referral bonus to the referrer on the customer's first one.
func (s *service) creditBonuses(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order) error {
	oid := order.ID

	if s.bonusCfg.OrderCreationBonus > 0 {
		if _, err := s.ledger.CreditInTx(ctx, tx, ledger.EntryInput{
			CustomerID:  order.CustomerID,
			Amount:      s.bonusCfg.OrderCreationBonus,
			Reason:      enums.ReasonOrderBonus,
			Description: fmt.Sprintf("bonus for paid order #%d", order.ID),
			OrderID:     &oid,
		}); err != nil {
			return err
		}
	}

	if s.bonusCfg.ReferralBonus <= 0 {
		return nil
	}
	customer, err := repo.FindCustomer(ctx, order.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if customer.ReferrerID == nil {
		return nil
	}
	prior, err := repo.CountPaidOrders(ctx, order.CustomerID, order.ID)
	if err != nil {
		return err
	}
	if prior > 0 {
		return nil
	}

	_, err = s.ledger.CreditInTx(ctx, tx, ledger.EntryInput{
		CustomerID:  *customer.ReferrerID,
		Amount:      s.bonusCfg.ReferralBonus,
		Reason:      enums.ReasonReferralBonus,
		Description: fmt.Sprintf("referral bonus for customer %d", order.CustomerID),
		OrderID:     &oid,
	})
	if apperrors.IsCode(err, apperrors.CodeNotFound) {
		// referrer account no longer exists, the confirmation still stands
		return nil
	}
	return err
}

func translateOrderErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.New(apperrors.CodeNotFound, "order not found")
	}
	return err
}

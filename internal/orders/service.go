package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orderdesk/orderdesk-backend/internal/ledger"
	"github.com/orderdesk/orderdesk-backend/internal/pricing"
	"github.com/orderdesk/orderdesk-backend/internal/promo"
	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	apperrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/metrics"
	"github.com/orderdesk/orderdesk-backend/pkg/outbox"
)

// ErrManualReview marks an order that has no quote because it is waiting for
// an operator estimate.
var ErrManualReview = apperrors.New(apperrors.CodeConflict, "order awaits manual estimation")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service owns the order lifecycle. Every status change passes through the
// transition table and commits together with its outbox event.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, orderID int64) (*models.Order, error)
	GetQuote(ctx context.Context, orderID int64) (QuoteView, error)
	SetPrice(ctx context.Context, orderID, operatorID, price int64) (*models.Order, error)
	DeclineWallet(ctx context.Context, orderID, customerID int64) (*models.Order, error)
	Cancel(ctx context.Context, orderID int64, actor Actor) error
	Reject(ctx context.Context, orderID, operatorID int64, reason string) error
	Advance(ctx context.Context, orderID, operatorID int64, to enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	pricing   pricing.Service
	promo     promo.Service
	ledger    ledger.Service
	walletCfg config.WalletConfig
	metrics   *metrics.LifecycleMetrics
	now       func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	pricingSvc pricing.Service,
	promoSvc promo.Service,
	ledgerSvc ledger.Service,
	walletCfg config.WalletConfig,
	lifecycle *metrics.LifecycleMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if pricingSvc == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	if promoSvc == nil {
		return nil, fmt.Errorf("promo service required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    outboxSvc,
		pricing:   pricingSvc,
		promo:     promoSvc,
		ledger:    ledgerSvc,
		walletCfg: walletCfg,
		metrics:   lifecycle,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.CustomerID == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "customer id is required")
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return nil, apperrors.New(apperrors.CodeValidation, "discount percent must be between 0 and 100")
	}

	category, err := enums.ParseWorkCategory(input.WorkCategory)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid work category")
	}
	deadline, err := ResolveDeadline(input.Deadline, s.now())
	if err != nil {
		return nil, err
	}
	description := SanitizeDescription(input.Description)
	if description == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "description is required")
	}

	auto, factors := s.pricing.Classify(pricing.ClassifyInput{
		WorkCategory:   category,
		DeadlineKey:    deadline,
		Description:    description,
		HasAttachments: input.HasAttachments,
	})

	order := &models.Order{
		CustomerID:      input.CustomerID,
		WorkCategory:    category,
		Subject:         input.Subject,
		Topic:           input.Topic,
		Description:     description,
		DeadlineKey:     deadline,
		HasAttachments:  input.HasAttachments,
		DiscountPercent: input.DiscountPercent,
		RiskFactors:     factors,
		Status:          enums.OrderStatusWaitingEstimation,
	}
	if auto {
		quote, err := s.pricing.Quote(category, deadline, 0)
		if err != nil {
			return nil, err
		}
		now := s.now()
		order.BasePrice = quote.FinalPrice
		order.Status = enums.OrderStatusWaitingPayment
		order.PricedAt = &now
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.UpsertCustomer(ctx, &models.Customer{
			ID:         input.CustomerID,
			ReferrerID: input.ReferrerID,
		}); err != nil {
			return apperrors.Wrap(apperrors.CodePersistence, err, "upsert customer")
		}
		if err := repo.Create(ctx, order); err != nil {
			return apperrors.Wrap(apperrors.CodePersistence, err, "create order")
		}

		if input.PromoCode != "" {
			if err := s.promo.ApplyInTx(ctx, tx, order, input.PromoCode, input.CustomerID); err != nil {
				return err
			}
			if err := repo.Update(ctx, order.ID, map[string]any{
				"promo_discount_percent": order.PromoDiscountPercent,
			}); err != nil {
				return apperrors.Wrap(apperrors.CodePersistence, err, "store promo discount")
			}
		}

		if order.Status == enums.OrderStatusWaitingPayment {
			wallet, err := s.walletReserve(ctx, tx, order)
			if err != nil {
				return err
			}
			order.WalletAmount = wallet
			if wallet > 0 {
				if err := repo.Update(ctx, order.ID, map[string]any{"wallet_amount": wallet}); err != nil {
					return apperrors.Wrap(apperrors.CodePersistence, err, "store wallet reservation")
				}
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         outbox.CustomerActor(input.CustomerID),
			Data: OrderCreatedEvent{
				OrderID:      order.ID,
				CustomerID:   order.CustomerID,
				WorkCategory: order.WorkCategory,
				DeadlineKey:  order.DeadlineKey,
				Status:       order.Status,
				FinalPrice:   order.FinalPrice(),
				RiskFactors:  order.RiskFactors,
				CreatedAt:    order.CreatedAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncOrderCreated("api")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, translateOrderErr(err)
	}
	return order, nil
}

func (s *service) GetQuote(ctx context.Context, orderID int64) (QuoteView, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return QuoteView{}, translateOrderErr(err)
	}
	if order.BasePrice == 0 {
		return QuoteView{}, ErrManualReview
	}

	// The table multiplier only describes auto-quoted prices. Operator-set
	// prices (any order that carried risk factors) already bake urgency in.
	multiplier := decimal.NewFromInt(1)
	if len(order.RiskFactors) == 0 {
		if quote, err := s.pricing.Quote(order.WorkCategory, order.DeadlineKey, 0); err == nil {
			multiplier = quote.UrgencyMultiplier
		}
	}

	return QuoteView{
		OrderID:              order.ID,
		Status:               order.Status,
		BasePrice:            order.BasePrice,
		UrgencyMultiplier:    multiplier,
		DiscountPercent:      order.DiscountPercent,
		PromoDiscountPercent: order.PromoDiscountPercent,
		WalletAmount:         order.WalletAmount,
		FinalPrice:           order.FinalPrice(),
	}, nil
}

func (s *service) SetPrice(ctx context.Context, orderID, operatorID, price int64) (*models.Order, error) {
	if operatorID == 0 {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "operator identity missing")
	}
	if price <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "price must be positive")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return translateOrderErr(err)
		}
		if order.Status != enums.OrderStatusWaitingEstimation {
			return apperrors.New(apperrors.CodeStateConflict, "order is not waiting for an estimate")
		}

		order.BasePrice = price
		wallet, err := s.walletReserve(ctx, tx, order)
		if err != nil {
			return err
		}
		order.WalletAmount = wallet

		now := s.now()
		affected, err := repo.UpdateStatusGuarded(ctx, order.ID,
			enums.OrderStatusWaitingEstimation, enums.OrderStatusWaitingPayment,
			map[string]any{
				"base_price":    price,
				"wallet_amount": wallet,
				"priced_at":     now,
			})
		if err != nil {
			return apperrors.Wrap(apperrors.CodePersistence, err, "set order price")
		}
		if affected == 0 {
			return apperrors.New(apperrors.CodeStateConflict, "order already handled")
		}

		order.Status = enums.OrderStatusWaitingPayment
		order.PricedAt = &now
		updated = order

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPriced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         outbox.OperatorActor(operatorID),
			Data: OrderPricedEvent{
				OrderID:      order.ID,
				CustomerID:   order.CustomerID,
				BasePrice:    order.BasePrice,
				WalletAmount: order.WalletAmount,
				FinalPrice:   order.FinalPrice(),
			},
		}); err != nil {
			return err
		}
		return s.emitStatusChanged(ctx, tx, order, enums.OrderStatusWaitingEstimation, enums.OrderStatusWaitingPayment, outbox.OperatorActor(operatorID), "", false)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeclineWallet drops the balance reservation before payment. Nothing was
// debited, so this is a recomputation, not a refund.
func (s *service) DeclineWallet(ctx context.Context, orderID, customerID int64) (*models.Order, error) {
	if customerID == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "customer id is required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return translateOrderErr(err)
		}
		if order.CustomerID != customerID {
			return apperrors.New(apperrors.CodeForbidden, "order belongs to another customer")
		}
		if order.Status != enums.OrderStatusWaitingPayment {
			return apperrors.New(apperrors.CodeStateConflict, "wallet can only be declined before payment")
		}
		if order.WalletAmount == 0 {
			updated = order
			return nil
		}

		if err := repo.Update(ctx, order.ID, map[string]any{"wallet_amount": 0}); err != nil {
			return apperrors.Wrap(apperrors.CodePersistence, err, "decline wallet")
		}
		order.WalletAmount = 0
		updated = order

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPriced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         outbox.CustomerActor(customerID),
			Data: OrderPricedEvent{
				OrderID:      order.ID,
				CustomerID:   order.CustomerID,
				BasePrice:    order.BasePrice,
				WalletAmount: 0,
				FinalPrice:   order.FinalPrice(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, orderID int64, actor Actor) error {
	if actor.CustomerID == nil && actor.OperatorID == nil {
		return apperrors.New(apperrors.CodeUnauthorized, "actor identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return translateOrderErr(err)
		}
		if actor.CustomerID != nil && order.CustomerID != *actor.CustomerID {
			return apperrors.New(apperrors.CodeForbidden, "order belongs to another customer")
		}
		if !IsCancellable(order.Status) {
			return apperrors.New(apperrors.CodeStateConflict, "order can no longer be cancelled")
		}

		from := order.Status
		affected, err := repo.UpdateStatusGuarded(ctx, order.ID, from, enums.OrderStatusCancelled, nil)
		if err != nil {
			return apperrors.Wrap(apperrors.CodePersistence, err, "cancel order")
		}
		if affected == 0 {
			return apperrors.New(apperrors.CodeStateConflict, "order already handled")
		}

		if err := s.promo.ReleaseInTx(ctx, tx, order.ID); err != nil {
			return err
		}

		order.Status = enums.OrderStatusCancelled
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			Data: OrderStatusEvent{
				OrderID:         order.ID,
				CustomerID:      order.CustomerID,
				From:            from,
				To:              enums.OrderStatusCancelled,
				ReportedPayment: from == enums.OrderStatusVerificationPending,
			},
		})
	})
}

func (s *service) Reject(ctx context.Context, orderID, operatorID int64, reason string) error {
	if operatorID == 0 {
		return apperrors.New(apperrors.CodeUnauthorized, "operator identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return translateOrderErr(err)
		}
		if !CanTransition(order.Status, enums.OrderStatusRejected) {
			return apperrors.New(apperrors.CodeStateConflict, "order cannot be rejected in current state")
		}

		from := order.Status
		affected, err := repo.UpdateStatusGuarded(ctx, order.ID, from, enums.OrderStatusRejected, nil)
		if err != nil {
			return apperrors.Wrap(apperrors.CodePersistence, err, "reject order")
		}
		if affected == 0 {
			return apperrors.New(apperrors.CodeStateConflict, "order already handled")
		}

		if err := s.promo.ReleaseInTx(ctx, tx, order.ID); err != nil {
			return err
		}

		order.Status = enums.OrderStatusRejected
		return s.emitStatusChanged(ctx, tx, order, from, enums.OrderStatusRejected, outbox.OperatorActor(operatorID), reason, false)
	})
}

func (s *service) Advance(ctx context.Context, orderID, operatorID int64, to enums.OrderStatus) (*models.Order, error) {
	if operatorID == 0 {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "operator identity missing")
	}
	if !fulfillmentTargets[to] {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("%q is not a fulfillment status", to))
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return translateOrderErr(err)
		}
		if !CanTransition(order.Status, to) {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("cannot advance from %s to %s", order.Status, to))
		}

		from := order.Status
		updates := map[string]any{}
		var completedAt time.Time
		if to == enums.OrderStatusCompleted {
			completedAt = s.now()
			updates["completed_at"] = completedAt
		}

		affected, err := repo.UpdateStatusGuarded(ctx, order.ID, from, to, updates)
		if err != nil {
			return apperrors.Wrap(apperrors.CodePersistence, err, "advance order")
		}
		if affected == 0 {
			return apperrors.New(apperrors.CodeStateConflict, "order already handled")
		}
		order.Status = to
		if to == enums.OrderStatusCompleted {
			order.CompletedAt = &completedAt
		}
		updated = order

		if err := s.emitStatusChanged(ctx, tx, order, from, to, outbox.OperatorActor(operatorID), "", false); err != nil {
			return err
		}
		if to != enums.OrderStatusCompleted {
			return nil
		}
		return s.settleCompletion(ctx, tx, repo, order, operatorID)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil && to == enums.OrderStatusCompleted {
		s.metrics.IncOrderCompleted()
	}
	return updated, nil
}

// settleCompletion credits the tiered cashback. The completed-order counter
// was already incremented when payment was confirmed; completion only reads
// it to pick the tier.
func (s *service) settleCompletion(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, operatorID int64) error {
	customer, err := repo.FindCustomer(ctx, order.CustomerID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodePersistence, err, "load customer for cashback")
	}
	completed := customer.CompletedOrders

	percent := cashbackPercent(completed)
	amount := order.PaidAmount * int64(percent) / 100
	if amount > 0 {
		orderID := order.ID
		if _, err := s.ledger.CreditInTx(ctx, tx, ledger.EntryInput{
			CustomerID:  order.CustomerID,
			Amount:      amount,
			Reason:      enums.ReasonCashback,
			Description: fmt.Sprintf("cashback for order #%d", order.ID),
			OrderID:     &orderID,
		}); err != nil {
			return err
		}
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderCompleted,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         outbox.OperatorActor(operatorID),
		Data: OrderCompletedEvent{
			OrderID:         order.ID,
			CustomerID:      order.CustomerID,
			PaidAmount:      order.PaidAmount,
			CompletedOrders: completed,
			CashbackPercent: percent,
			CashbackAmount:  amount,
		},
	})
}

// walletReserve computes how much of the order's price internal balance may
// cover. The amount is only reserved; the debit happens at payment
// confirmation.
func (s *service) walletReserve(ctx context.Context, tx *gorm.DB, order *models.Order) (int64, error) {
	price := order.BasePrice
	price -= order.BasePrice * int64(order.DiscountPercent) / 100
	price -= order.BasePrice * int64(order.PromoDiscountPercent) / 100
	if price <= 0 {
		return 0, nil
	}

	percent := s.walletCfg.MaxCoveragePercent
	if percent <= 0 || percent > 100 {
		percent = 50
	}
	limit := price * int64(percent) / 100

	balance, err := s.ledger.BalanceInTx(ctx, tx, order.CustomerID)
	if err != nil {
		return 0, err
	}
	if balance < limit {
		return balance, nil
	}
	return limit, nil
}

func (s *service) emitStatusChanged(ctx context.Context, tx *gorm.DB, order *models.Order, from, to enums.OrderStatus, actor *outbox.ActorRef, reason string, reportedPayment bool) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: OrderStatusEvent{
			OrderID:         order.ID,
			CustomerID:      order.CustomerID,
			From:            from,
			To:              to,
			Reason:          reason,
			ReportedPayment: reportedPayment,
		},
	})
}

func cashbackPercent(completedOrders int) int {
	switch {
	case completedOrders >= 20:
		return 5
	case completedOrders >= 10:
		return 4
	case completedOrders >= 5:
		return 3
	default:
		return 2
	}
}

func actorRef(actor Actor) *outbox.ActorRef {
	if actor.OperatorID != nil {
		return outbox.OperatorActor(*actor.OperatorID)
	}
	if actor.CustomerID != nil {
		return outbox.CustomerActor(*actor.CustomerID)
	}
	return nil
}

func translateOrderErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.New(apperrors.CodeNotFound, "order not found")
	}
	return err
}

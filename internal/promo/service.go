package promo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	apperrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/outbox"
)

// Result reports what a promo code is worth to a specific customer.
type Result struct {
	PromoCodeID     int64  `json:"promo_code_id"`
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}

// Service validates and applies discount codes. Apply and Release run inside
// the caller's transaction so promo state commits with the order it belongs
// to.
type Service interface {
	Check(ctx context.Context, code string, customerID int64) (Result, error)
	ApplyInTx(ctx context.Context, tx *gorm.DB, order *models.Order, code string, customerID int64) error
	ReleaseInTx(ctx context.Context, tx *gorm.DB, orderID int64) error
}

type service struct {
	repo   Repository
	outbox *outbox.Service
	now    func() time.Time
}

// NewService wires a promo service with the provided repository.
func NewService(repo Repository, outboxSvc *outbox.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promo repository required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{repo: repo, outbox: outboxSvc, now: time.Now}, nil
}

func (s *service) Check(ctx context.Context, code string, customerID int64) (Result, error) {
	if customerID == 0 {
		return Result{}, apperrors.New(apperrors.CodeValidation, "customer id is required")
	}
	promo, err := s.validate(ctx, s.repo, code, customerID, 0)
	if err != nil {
		return Result{}, err
	}
	return Result{
		PromoCodeID:     promo.ID,
		Code:            promo.Code,
		DiscountPercent: promo.DiscountPercent,
	}, nil
}

// ApplyInTx re-validates under the caller's transaction, consumes one use of
// the code and records the usage. The counter update is a guarded
// compare-and-set and the partial unique index on active usages is the
// backstop against two transactions applying the same code for one customer.
func (s *service) ApplyInTx(ctx context.Context, tx *gorm.DB, order *models.Order, code string, customerID int64) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if order == nil {
		return fmt.Errorf("order required")
	}

	repo := s.repo.WithTx(tx)
	promo, err := s.validate(ctx, repo, code, customerID, order.ID)
	if err != nil {
		return err
	}

	affected, err := repo.IncrementUses(ctx, promo.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.New(apperrors.CodeConflict, "promo code has no uses left")
	}

	usage := &models.PromoCodeUsage{
		PromoCodeID: promo.ID,
		CustomerID:  customerID,
		OrderID:     order.ID,
		IsActive:    true,
	}
	if err := repo.InsertUsage(ctx, usage); err != nil {
		if db.IsUniqueViolation(err, "") {
			return apperrors.New(apperrors.CodeConflict, "promo code already used")
		}
		return err
	}

	order.PromoDiscountPercent = promo.DiscountPercent

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPromoApplied,
		AggregateType: enums.AggregatePromo,
		AggregateID:   promo.ID,
		Actor:         outbox.CustomerActor(customerID),
		Data: map[string]any{
			"promo_code_id":    promo.ID,
			"code":             promo.Code,
			"customer_id":      customerID,
			"order_id":         order.ID,
			"discount_percent": promo.DiscountPercent,
		},
	})
}

// ReleaseInTx frees the customer's per-code gate when an order dies before
// payment. The global uses counter stays where it is; a released code run
// counts against capacity.
func (s *service) ReleaseInTx(ctx context.Context, tx *gorm.DB, orderID int64) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}

	repo := s.repo.WithTx(tx)
	usage, err := repo.FindActiveUsageByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := repo.DeactivateUsage(ctx, usage.ID, s.now()); err != nil {
		return err
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPromoReleased,
		AggregateType: enums.AggregatePromo,
		AggregateID:   usage.PromoCodeID,
		Data: map[string]any{
			"promo_code_id": usage.PromoCodeID,
			"customer_id":   usage.CustomerID,
			"order_id":      orderID,
		},
	})
}

func (s *service) validate(ctx context.Context, repo Repository, code string, customerID, excludeOrderID int64) (*models.PromoCode, error) {
	promo, err := repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "promo code not found")
		}
		return nil, err
	}

	now := s.now()
	if !promo.Active {
		return nil, apperrors.New(apperrors.CodeConflict, "promo code is disabled")
	}
	if promo.ValidFrom != nil && now.Before(*promo.ValidFrom) {
		return nil, apperrors.New(apperrors.CodeConflict, "promo code is not active yet")
	}
	if promo.ValidUntil != nil && now.After(*promo.ValidUntil) {
		return nil, apperrors.New(apperrors.CodeConflict, "promo code has expired")
	}
	if promo.MaxUses > 0 && promo.CurrentUses >= promo.MaxUses {
		return nil, apperrors.New(apperrors.CodeConflict, "promo code has no uses left")
	}

	if promo.NewUsersOnly {
		orders, err := repo.CountCustomerOrders(ctx, customerID, excludeOrderID)
		if err != nil {
			return nil, err
		}
		if orders > 0 {
			return nil, apperrors.New(apperrors.CodeConflict, "promo code is for new customers only")
		}
	}

	used, err := repo.HasActiveUsage(ctx, promo.ID, customerID)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, apperrors.New(apperrors.CodeConflict, "promo code already used")
	}

	return promo, nil
}

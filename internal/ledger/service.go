package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	apperrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/metrics"
	"github.com/orderdesk/orderdesk-backend/pkg/outbox"
	"github.com/orderdesk/orderdesk-backend/pkg/pagination"
)

// Service defines the append-only balance operations. Amounts are integer
// kopecks; a customer's balance is always the sum of their transactions.
type Service interface {
	Credit(ctx context.Context, input EntryInput) (int64, error)
	Debit(ctx context.Context, input EntryInput) (int64, error)
	CreditInTx(ctx context.Context, tx *gorm.DB, input EntryInput) (int64, error)
	DebitInTx(ctx context.Context, tx *gorm.DB, input EntryInput) (int64, error)
	Balance(ctx context.Context, customerID int64) (int64, error)
	BalanceInTx(ctx context.Context, tx *gorm.DB, customerID int64) (int64, error)
	History(ctx context.Context, customerID int64, page pagination.Params) ([]models.BalanceTransaction, string, error)
}

// EntryInput captures the immutable data a balance transaction requires.
type EntryInput struct {
	CustomerID  int64
	Amount      int64
	Reason      enums.TransactionReason
	Description string
	OrderID     *int64
}

type service struct {
	client  *db.Client
	repo    Repository
	outbox  *outbox.Service
	metrics *metrics.LifecycleMetrics
}

// NewService wires a ledger service with the provided dependencies.
func NewService(client *db.Client, repo Repository, outboxSvc *outbox.Service, lifecycle *metrics.LifecycleMetrics) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{client: client, repo: repo, outbox: outboxSvc, metrics: lifecycle}, nil
}

func (s *service) Credit(ctx context.Context, input EntryInput) (int64, error) {
	var balance int64
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		after, err := s.CreditInTx(ctx, tx, input)
		if err != nil {
			return err
		}
		balance = after
		return nil
	})
	return balance, err
}

func (s *service) Debit(ctx context.Context, input EntryInput) (int64, error) {
	var balance int64
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		after, err := s.DebitInTx(ctx, tx, input)
		if err != nil {
			return err
		}
		balance = after
		return nil
	})
	return balance, err
}

// CreditInTx appends a positive transaction inside the caller's transaction.
func (s *service) CreditInTx(ctx context.Context, tx *gorm.DB, input EntryInput) (int64, error) {
	if err := validateEntry(input); err != nil {
		return 0, err
	}
	repo := s.repo.WithTx(tx)
	if err := repo.LockCustomer(ctx, input.CustomerID); err != nil {
		return 0, translateCustomerErr(err)
	}

	txn := &models.BalanceTransaction{
		CustomerID:  input.CustomerID,
		Amount:      input.Amount,
		Type:        enums.TransactionTypeCredit,
		Reason:      input.Reason,
		Description: input.Description,
		OrderID:     input.OrderID,
	}
	if err := repo.Insert(ctx, txn); err != nil {
		return 0, err
	}

	balance, err := repo.SumByCustomer(ctx, input.CustomerID)
	if err != nil {
		return 0, err
	}
	if err := s.emitBalanceChanged(ctx, tx, txn, balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// DebitInTx appends a negative transaction inside the caller's transaction.
// The customer row lock serializes the balance check against concurrent
// debits; the check and the append commit together or not at all.
func (s *service) DebitInTx(ctx context.Context, tx *gorm.DB, input EntryInput) (int64, error) {
	if err := validateEntry(input); err != nil {
		return 0, err
	}
	repo := s.repo.WithTx(tx)
	if err := repo.LockCustomer(ctx, input.CustomerID); err != nil {
		return 0, translateCustomerErr(err)
	}

	balance, err := repo.SumByCustomer(ctx, input.CustomerID)
	if err != nil {
		return 0, err
	}
	if balance < input.Amount {
		if s.metrics != nil {
			s.metrics.IncDebitBlocked()
		}
		return 0, apperrors.New(apperrors.CodeInsufficientFunds, "insufficient balance").
			WithDetails(map[string]int64{"balance": balance, "requested": input.Amount})
	}

	txn := &models.BalanceTransaction{
		CustomerID:  input.CustomerID,
		Amount:      -input.Amount,
		Type:        enums.TransactionTypeDebit,
		Reason:      input.Reason,
		Description: input.Description,
		OrderID:     input.OrderID,
	}
	if err := repo.Insert(ctx, txn); err != nil {
		return 0, err
	}

	after := balance - input.Amount
	if err := s.emitBalanceChanged(ctx, tx, txn, after); err != nil {
		return 0, err
	}
	return after, nil
}

func (s *service) Balance(ctx context.Context, customerID int64) (int64, error) {
	if customerID == 0 {
		return 0, apperrors.New(apperrors.CodeValidation, "customer id is required")
	}
	return s.repo.SumByCustomer(ctx, customerID)
}

// BalanceInTx reads the balance through the caller's transaction so it is
// consistent with rows written earlier in the same unit of work.
func (s *service) BalanceInTx(ctx context.Context, tx *gorm.DB, customerID int64) (int64, error) {
	if customerID == 0 {
		return 0, apperrors.New(apperrors.CodeValidation, "customer id is required")
	}
	return s.repo.WithTx(tx).SumByCustomer(ctx, customerID)
}

func (s *service) History(ctx context.Context, customerID int64, page pagination.Params) ([]models.BalanceTransaction, string, error) {
	if customerID == 0 {
		return nil, "", apperrors.New(apperrors.CodeValidation, "customer id is required")
	}
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(page.Limit)
	txns, err := s.repo.ListByCustomer(ctx, customerID, pagination.LimitWithBuffer(page.Limit), cursor)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return txns, next, nil
}

func (s *service) emitBalanceChanged(ctx context.Context, tx *gorm.DB, txn *models.BalanceTransaction, balanceAfter int64) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventBalanceChanged,
		AggregateType: enums.AggregateBalance,
		AggregateID:   txn.CustomerID,
		Data: map[string]any{
			"customer_id":   txn.CustomerID,
			"amount":        txn.Amount,
			"type":          txn.Type,
			"reason":        txn.Reason,
			"order_id":      txn.OrderID,
			"balance_after": balanceAfter,
		},
	})
}

func validateEntry(input EntryInput) error {
	if input.CustomerID == 0 {
		return apperrors.New(apperrors.CodeValidation, "customer id is required")
	}
	if input.Amount <= 0 {
		return apperrors.New(apperrors.CodeValidation, "amount must be positive")
	}
	if !input.Reason.IsValid() {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid transaction reason %q", input.Reason))
	}
	return nil
}

func translateCustomerErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.New(apperrors.CodeNotFound, "customer not found")
	}
	return err
}

package enums

import "fmt"

// TransactionType distinguishes balance credits from debits.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeCredit,
	TransactionTypeDebit,
}

// IsValid reports whether the value is a known TransactionType.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionType converts raw input into TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}

// TransactionReason explains why a balance changed.
type TransactionReason string

const (
	ReasonOrderBonus      TransactionReason = "order_bonus"
	ReasonReferralBonus   TransactionReason = "referral_bonus"
	ReasonAdminAdjustment TransactionReason = "admin_adjustment"
	ReasonOrderDiscount   TransactionReason = "order_discount"
	ReasonCompensation    TransactionReason = "compensation"
	ReasonCashback        TransactionReason = "cashback"
)

var validTransactionReasons = []TransactionReason{
	ReasonOrderBonus,
	ReasonReferralBonus,
	ReasonAdminAdjustment,
	ReasonOrderDiscount,
	ReasonCompensation,
	ReasonCashback,
}

// IsValid reports whether the value is a known TransactionReason.
func (r TransactionReason) IsValid() bool {
	for _, candidate := range validTransactionReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseTransactionReason converts raw input into TransactionReason.
func ParseTransactionReason(value string) (TransactionReason, error) {
	for _, candidate := range validTransactionReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction reason %q", value)
}

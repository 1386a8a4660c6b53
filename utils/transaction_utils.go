package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Luismorlan/blockcraft/model"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAddress        = errors.New("address is empty")
	ErrInvalidAmount       = errors.New("amount is not a number")
	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// FormatTimestamp is the canonical text form of a timestamp in digests and on the wire.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// TransactionDocument is the canonical form of a transaction inside a block digest.
func TransactionDocument(tx *model.Transaction) map[string]interface{} {
	return map[string]interface{}{
		"id":        tx.ID.String(),
		"from":      tx.From,
		"to":        tx.To,
		"amount":    tx.Amount.String(),
		"timestamp": FormatTimestamp(tx.Timestamp),
		"type":      tx.Kind.String(),
	}
}

// ParseAmount parses user input into a positive amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrNonPositiveAmount, d)
	}
	return d, nil
}

// A transfer is admissible if:
// 1. Both addresses are non-empty.
// 2. The amount is positive.
// Affordability is not checked here, see CheckAffordable.
func ValidateTransfer(from string, to string, amount decimal.Decimal) error {
	if strings.TrimSpace(from) == "" {
		return fmt.Errorf("sender %w", ErrEmptyAddress)
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient %w", ErrEmptyAddress)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount)
	}
	return nil
}

// CheckAffordable is the optional pre-submission check callers run against the sealed
// balance of the sender.
func CheckAffordable(balance decimal.Decimal, amount decimal.Decimal) error {
	if balance.LessThan(amount) {
		return fmt.Errorf("%w: available %s, need %s", ErrInsufficientBalance, balance, amount)
	}
	return nil
}

package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxDescriptionLength = 200
	CurrencyCodeLength   = 3
)

type (
	// Income is a single income record. Amount is a non-negative decimal in
	// the record's currency; UpdatedAt stays nil until the first edit.
	Income struct {
		ID          string
		Date        time.Time
		Description string
		Categories  []string
		Amount      decimal.Decimal
		Currency    string
		Recurring   bool
		CreatedAt   time.Time
		UpdatedAt   *time.Time
	}

	// NewIncome carries the caller-supplied fields of an add command.
	NewIncome struct {
		Date        time.Time
		Description string
		Categories  []string
		Amount      decimal.Decimal
		Currency    string
		Recurring   bool
	}

	// IncomeChanges carries the fields of an edit command. Nil fields are
	// left untouched.
	IncomeChanges struct {
		Date        *time.Time
		Description *string
		Categories  []string
		Amount      *decimal.Decimal
		Currency    *string
		Recurring   *bool
	}
)

var (
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrNegativeAmount     = errors.New("amount must not be negative")
	ErrAmountPrecision    = errors.New("amount must have at most 2 decimal places")
	ErrInvalidCurrency    = errors.New("currency must be a 3-letter code")
	ErrZeroDate           = errors.New("date cannot be zero")
)

// Validate checks the add command and normalizes it in place.
func (n *NewIncome) Validate() error {
	n.Description = strings.TrimSpace(n.Description)
	n.Currency = strings.ToUpper(strings.TrimSpace(n.Currency))
	n.Categories = NormalizeCategories(n.Categories)
	// Storage keeps millisecond precision.
	n.Date = n.Date.UTC().Truncate(time.Millisecond)

	if n.Date.IsZero() {
		return NewValidationError("date", ErrZeroDate)
	}
	if err := validateDescription(n.Description); err != nil {
		return err
	}
	if err := ValidateAmount(n.Amount); err != nil {
		return NewValidationError("amount", err)
	}
	if err := validateCurrency(n.Currency); err != nil {
		return err
	}
	return nil
}

// Validate checks the edit command and normalizes it in place.
func (c *IncomeChanges) Validate() error {
	if c.Date != nil {
		d := c.Date.UTC().Truncate(time.Millisecond)
		if d.IsZero() {
			return NewValidationError("date", ErrZeroDate)
		}
		c.Date = &d
	}
	if c.Description != nil {
		desc := strings.TrimSpace(*c.Description)
		if err := validateDescription(desc); err != nil {
			return err
		}
		c.Description = &desc
	}
	if c.Amount != nil {
		if err := ValidateAmount(*c.Amount); err != nil {
			return NewValidationError("amount", err)
		}
	}
	if c.Currency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*c.Currency))
		if err := validateCurrency(cur); err != nil {
			return err
		}
		c.Currency = &cur
	}
	if c.Categories != nil {
		c.Categories = NormalizeCategories(c.Categories)
	}
	return nil
}

// Apply copies the set fields onto the income.
func (c IncomeChanges) Apply(in *Income) {
	if c.Date != nil {
		in.Date = *c.Date
	}
	if c.Description != nil {
		in.Description = *c.Description
	}
	if c.Categories != nil {
		in.Categories = c.Categories
	}
	if c.Amount != nil {
		in.Amount = *c.Amount
	}
	if c.Currency != nil {
		in.Currency = *c.Currency
	}
	if c.Recurring != nil {
		in.Recurring = *c.Recurring
	}
}

// NormalizeCategories trims tags, drops blanks and removes duplicates while
// keeping the first occurrence order.
func NormalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func validateDescription(desc string) error {
	if desc == "" {
		return NewValidationError("description", ErrEmptyDescription)
	}
	if len(desc) > MaxDescriptionLength {
		return NewValidationError("description", ErrDescriptionTooLong)
	}
	return nil
}

func validateCurrency(cur string) error {
	if len(cur) != CurrencyCodeLength {
		return NewValidationError("currency", ErrInvalidCurrency)
	}
	for _, r := range cur {
		if r < 'A' || r > 'Z' {
			return NewValidationError("currency", ErrInvalidCurrency)
		}
	}
	return nil
}

package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func income(id string, date time.Time, amount string, recurring bool, categories ...string) core.Income {
	return core.Income{
		ID:          id,
		Date:        date,
		Description: "income " + id,
		Categories:  categories,
		Amount:      decimal.RequireFromString(amount),
		Currency:    "EUR",
		Recurring:   recurring,
		CreatedAt:   date,
	}
}

func insertAll(t *testing.T, repo *Repository, incomes ...core.Income) {
	t.Helper()
	for _, in := range incomes {
		if err := repo.InsertIncome(context.Background(), in); err != nil {
			t.Fatalf("InsertIncome(%s) error = %v", in.ID, err)
		}
	}
}

// setRecurringNull clears the recurring flag the way legacy rows store it.
func setRecurringNull(t *testing.T, repo *Repository, id string) {
	t.Helper()
	c := repo.incomes
	stmt := fmt.Sprintf("UPDATE %s SET %s = NULL WHERE %s = ?", c.Table, c.Recurring.Column, c.ID.Column)
	if _, err := repo.db.Exec(stmt, id); err != nil {
		t.Fatalf("clear recurring: %v", err)
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

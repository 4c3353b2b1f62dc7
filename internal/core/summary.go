package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds income and expense totals over an inclusive date range.
type Summary struct {
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	PeriodStart   time.Time
	PeriodEnd     time.Time
}

// NetProfit is income minus expenses for the period.
func (s Summary) NetProfit() decimal.Decimal {
	return s.TotalIncome.Sub(s.TotalExpenses)
}
